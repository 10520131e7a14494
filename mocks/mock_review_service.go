package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"baucheck/internal/domain"
)

// MockReviewService is a mock implementation of service.ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, projectID, planID uuid.UUID) (*domain.ComplianceReview, error) {
	args := m.Called(ctx, projectID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplianceReview), args.Error(1)
}

func (m *MockReviewService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceReview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplianceReview), args.Error(1)
}

func (m *MockReviewService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ComplianceReview, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ComplianceReview), args.Error(1)
}

func (m *MockReviewService) ExportXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
