package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"baucheck/internal/domain"
)

// MockReviewRepo is a mock implementation of port.ReviewRepository.
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, r *domain.ComplianceReview) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceReview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplianceReview), args.Error(1)
}

func (m *MockReviewRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ComplianceReview, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ComplianceReview), args.Error(1)
}

func (m *MockReviewRepo) SetReport(ctx context.Context, id uuid.UUID, bucket, key string) error {
	args := m.Called(ctx, id, bucket, key)
	return args.Error(0)
}

func (m *MockReviewRepo) MarkEmailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
