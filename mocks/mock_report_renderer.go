package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockReportRenderer is a mock implementation of port.ReportRenderer.
type MockReportRenderer struct {
	mock.Mock
}

func (m *MockReportRenderer) RenderComplianceReport(ctx context.Context, projectName string, verdict json.RawMessage) ([]byte, string, error) {
	args := m.Called(ctx, projectName, verdict)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
