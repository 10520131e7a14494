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

type zoningPlanRepo struct {
	db *sqlx.DB
}

// NewZoningPlanRepo creates a new PostgreSQL-backed ZoningPlanRepository.
func NewZoningPlanRepo(db *sqlx.DB) port.ZoningPlanRepository {
	return &zoningPlanRepo{db: db}
}

func (r *zoningPlanRepo) Create(ctx context.Context, zp *domain.ZoningPlan) error {
	now := time.Now().UTC()
	zp.CreatedAt = now
	zp.UpdatedAt = now

	query := `INSERT INTO zoning_plans (
		id, name, s3_bucket, s3_key, page_count,
		analysis_status, analysis_error, analysis_model,
		attribute_set, attempts, retry_after, analyzed_at,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12,
		$13, $14
	)`

	_, err := r.db.ExecContext(ctx, query,
		zp.ID, zp.Name, zp.S3Bucket, zp.S3Key, zp.PageCount,
		zp.AnalysisStatus, zp.AnalysisError, zp.AnalysisModel,
		zp.AttributeSet, zp.Attempts, zp.RetryAfter, zp.AnalyzedAt,
		zp.CreatedAt, zp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("zoningPlanRepo.Create: %w", err)
	}
	return nil
}

func (r *zoningPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error) {
	var zp domain.ZoningPlan
	err := r.db.GetContext(ctx, &zp, "SELECT * FROM zoning_plans WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("zoningPlanRepo.GetByID: %w", err)
	}
	return &zp, nil
}

func (r *zoningPlanRepo) List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM zoning_plans"); err != nil {
		return nil, 0, fmt.Errorf("zoningPlanRepo.List count: %w", err)
	}

	var plans []domain.ZoningPlan
	err := r.db.SelectContext(ctx, &plans,
		"SELECT * FROM zoning_plans ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("zoningPlanRepo.List: %w", err)
	}
	return plans, total, nil
}

func (r *zoningPlanRepo) UpdateAnalysis(ctx context.Context, zp *domain.ZoningPlan) error {
	zp.UpdatedAt = time.Now().UTC()

	query := `UPDATE zoning_plans SET
		page_count = $2, analysis_status = $3, analysis_error = $4, analysis_model = $5,
		attribute_set = $6, attempts = $7, retry_after = $8, analyzed_at = $9, updated_at = $10
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		zp.ID, zp.PageCount, zp.AnalysisStatus, zp.AnalysisError, zp.AnalysisModel,
		zp.AttributeSet, zp.Attempts, zp.RetryAfter, zp.AnalyzedAt, zp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("zoningPlanRepo.UpdateAnalysis: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// ClaimQueued atomically flips up to limit queued plans whose retry window
// has passed to processing, so concurrent workers never pick up the same plan
// twice.
func (r *zoningPlanRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ZoningPlan, error) {
	query := `UPDATE zoning_plans SET analysis_status = $1, updated_at = NOW()
	WHERE id IN (
		SELECT id FROM zoning_plans
		WHERE analysis_status = $2 AND (retry_after IS NULL OR retry_after <= NOW())
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	)
	RETURNING *`

	var plans []domain.ZoningPlan
	err := r.db.SelectContext(ctx, &plans, query,
		domain.AnalysisStatusProcessing, domain.AnalysisStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("zoningPlanRepo.ClaimQueued: %w", err)
	}
	return plans, nil
}
