package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRasterizer is a mock implementation of port.Rasterizer.
type MockRasterizer struct {
	mock.Mock
}

func (m *MockRasterizer) Rasterize(ctx context.Context, pdfBytes []byte, dpi int) ([][]byte, error) {
	args := m.Called(ctx, pdfBytes, dpi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}
