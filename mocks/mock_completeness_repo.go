package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"baucheck/internal/domain"
)

// MockCompletenessRepo is a mock implementation of port.CompletenessRepository.
type MockCompletenessRepo struct {
	mock.Mock
}

func (m *MockCompletenessRepo) Create(ctx context.Context, c *domain.CompletenessCheck) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompletenessRepo) GetLatestByProject(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletenessCheck), args.Error(1)
}
