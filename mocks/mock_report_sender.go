package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockReportSender is a mock implementation of port.ReportSender.
type MockReportSender struct {
	mock.Mock
}

func (m *MockReportSender) SendComplianceReport(ctx context.Context, toEmail, projectName, reportURL string) error {
	args := m.Called(ctx, toEmail, projectName, reportURL)
	return args.Error(0)
}
