package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"baucheck/internal/domain"
	"baucheck/internal/extraction"
	"baucheck/internal/service"
)

// MockPlanService is a mock implementation of service.PlanService.
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) Upload(ctx context.Context, input *service.UploadPlanInput) (*domain.ZoningPlan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ZoningPlan), args.Error(1)
}

func (m *MockPlanService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ZoningPlan), args.Error(1)
}

func (m *MockPlanService) List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ZoningPlan), args.Int(1), args.Error(2)
}

func (m *MockPlanService) GetAttributeSet(ctx context.Context, id uuid.UUID) (*extraction.AttributeSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.AttributeSet), args.Error(1)
}

func (m *MockPlanService) AnalyzePlan(ctx context.Context, zp *domain.ZoningPlan, maxAttempts int) {
	m.Called(ctx, zp, maxAttempts)
}
