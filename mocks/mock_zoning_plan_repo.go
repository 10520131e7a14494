package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"baucheck/internal/domain"
)

// MockZoningPlanRepo is a mock implementation of port.ZoningPlanRepository.
type MockZoningPlanRepo struct {
	mock.Mock
}

func (m *MockZoningPlanRepo) Create(ctx context.Context, zp *domain.ZoningPlan) error {
	args := m.Called(ctx, zp)
	return args.Error(0)
}

func (m *MockZoningPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ZoningPlan), args.Error(1)
}

func (m *MockZoningPlanRepo) List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ZoningPlan), args.Int(1), args.Error(2)
}

func (m *MockZoningPlanRepo) UpdateAnalysis(ctx context.Context, zp *domain.ZoningPlan) error {
	args := m.Called(ctx, zp)
	return args.Error(0)
}

func (m *MockZoningPlanRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ZoningPlan, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ZoningPlan), args.Error(1)
}
