package noop

import (
	"context"
	"log"

	"baucheck/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op ReportSender that logs report URLs to stdout.
func NewNoopSender() port.ReportSender {
	return &noopSender{}
}

func (s *noopSender) SendComplianceReport(_ context.Context, toEmail, projectName, reportURL string) error {
	log.Printf("[NOOP EMAIL] Compliance report for %q to %s: %s", projectName, toEmail, reportURL)
	return nil
}
