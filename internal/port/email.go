package port

import "context"

// ReportSender defines the contract for delivering a finished compliance
// report to the uploader. Failures here must never fail the review pipeline;
// callers log and continue.
type ReportSender interface {
	SendComplianceReport(ctx context.Context, toEmail, projectName, reportURL string) error
}
