package port

import (
	"context"
	"encoding/json"
)

// ReportRenderer turns a compliance verdict into a downloadable report
// document. The actual typesetting backend (PDF service, template engine) is
// an external collaborator; implementations return the rendered bytes and
// their content type. Verdict is the serialized compare.Verdict structure.
type ReportRenderer interface {
	RenderComplianceReport(ctx context.Context, projectName string, verdict json.RawMessage) ([]byte, string, error)
}
