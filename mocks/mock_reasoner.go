package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"baucheck/internal/port"
)

// MockReasoner is a mock implementation of port.Reasoner.
type MockReasoner struct {
	mock.Mock
}

func (m *MockReasoner) Invoke(ctx context.Context, system string, parts []port.ContentPart) (string, error) {
	args := m.Called(ctx, system, parts)
	return args.String(0), args.Error(1)
}
