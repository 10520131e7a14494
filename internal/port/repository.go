package port

import (
	"context"

	"github.com/google/uuid"

	"baucheck/internal/domain"
)

// ProjectRepository persists project submissions and their extraction results.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, offset, limit int) ([]domain.Project, int, error)
	UpdateAnalysis(ctx context.Context, p *domain.Project) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ZoningPlanRepository persists B-Plans and their extraction results.
type ZoningPlanRepository interface {
	Create(ctx context.Context, zp *domain.ZoningPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error)
	List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error)
	UpdateAnalysis(ctx context.Context, zp *domain.ZoningPlan) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.ZoningPlan, error)
}

// ReviewRepository persists compliance review verdicts.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.ComplianceReview) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceReview, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ComplianceReview, error)
	SetReport(ctx context.Context, id uuid.UUID, bucket, key string) error
	MarkEmailed(ctx context.Context, id uuid.UUID) error
}

// CompletenessRepository persists completeness check reports.
type CompletenessRepository interface {
	Create(ctx context.Context, c *domain.CompletenessCheck) error
	GetLatestByProject(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error)
}
