package domain

// AnalysisStatus represents the lifecycle of an extraction run over a document.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusQueued     AnalysisStatus = "queued"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// OverallStatus is the top-level outcome of a compliance review.
type OverallStatus string

const (
	OverallCompliant    OverallStatus = "compliant"
	OverallNonCompliant OverallStatus = "non_compliant"
)

// CompletenessStatus is the top-level outcome of a completeness check.
type CompletenessStatus string

const (
	CompletenessComplete   CompletenessStatus = "Complete"
	CompletenessIncomplete CompletenessStatus = "Incomplete"
)

// AllowedArchiveTypes maps accepted project upload MIME types to extensions.
var AllowedArchiveTypes = map[string]string{
	"application/zip":              "zip",
	"application/x-zip-compressed": "zip",
}

// AllowedPlanTypes maps accepted zoning plan upload MIME types to extensions.
var AllowedPlanTypes = map[string]string{
	"application/pdf": "pdf",
}
