package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"baucheck/internal/domain"
	"baucheck/internal/port"
)

type reviewRepo struct {
	db *sqlx.DB
}

// NewReviewRepo creates a new PostgreSQL-backed ReviewRepository.
func NewReviewRepo(db *sqlx.DB) port.ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rev *domain.ComplianceReview) error {
	rev.CreatedAt = time.Now().UTC()

	query := `INSERT INTO compliance_reviews (
		id, project_id, zoning_plan_id, overall_status, verdict,
		report_bucket, report_key, emailed_at, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.ProjectID, rev.ZoningPlanID, rev.OverallStatus, rev.Verdict,
		rev.ReportBucket, rev.ReportKey, rev.EmailedAt, rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("reviewRepo.Create: %w", err)
	}
	return nil
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceReview, error) {
	var rev domain.ComplianceReview
	err := r.db.GetContext(ctx, &rev, "SELECT * FROM compliance_reviews WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("reviewRepo.GetByID: %w", err)
	}
	return &rev, nil
}

func (r *reviewRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ComplianceReview, error) {
	var reviews []domain.ComplianceReview
	err := r.db.SelectContext(ctx, &reviews,
		"SELECT * FROM compliance_reviews WHERE project_id = $1 ORDER BY created_at DESC", projectID)
	if err != nil {
		return nil, fmt.Errorf("reviewRepo.ListByProject: %w", err)
	}
	return reviews, nil
}

// SetReport attaches the rendered report's object location to an already
// persisted review.
func (r *reviewRepo) SetReport(ctx context.Context, id uuid.UUID, bucket, key string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE compliance_reviews SET report_bucket = $2, report_key = $3 WHERE id = $1",
		id, bucket, key)
	if err != nil {
		return fmt.Errorf("reviewRepo.SetReport: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepo) MarkEmailed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE compliance_reviews SET emailed_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("reviewRepo.MarkEmailed: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}
