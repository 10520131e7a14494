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

type projectRepo struct {
	db *sqlx.DB
}

// NewProjectRepo creates a new PostgreSQL-backed ProjectRepository.
func NewProjectRepo(db *sqlx.DB) port.ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO projects (
		id, name, notify_email, s3_bucket, s3_key, page_count,
		analysis_status, analysis_error, analysis_model,
		attribute_set, analysis_summary, attempts, retry_after, analyzed_at,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9,
		$10, $11, $12, $13, $14,
		$15, $16
	)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.NotifyEmail, p.S3Bucket, p.S3Key, p.PageCount,
		p.AnalysisStatus, p.AnalysisError, p.AnalysisModel,
		p.AttributeSet, p.AnalysisSummary, p.Attempts, p.RetryAfter, p.AnalyzedAt,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("projectRepo.Create: %w", err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	err := r.db.GetContext(ctx, &p, "SELECT * FROM projects WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *projectRepo) List(ctx context.Context, offset, limit int) ([]domain.Project, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM projects"); err != nil {
		return nil, 0, fmt.Errorf("projectRepo.List count: %w", err)
	}

	var projects []domain.Project
	err := r.db.SelectContext(ctx, &projects,
		"SELECT * FROM projects ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("projectRepo.List: %w", err)
	}
	return projects, total, nil
}

// UpdateAnalysis writes the analysis outcome in one statement. The attribute
// set and summary land together with the status so a reader never sees a
// half-populated record.
func (r *projectRepo) UpdateAnalysis(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()

	query := `UPDATE projects SET
		page_count = $2, analysis_status = $3, analysis_error = $4, analysis_model = $5,
		attribute_set = $6, analysis_summary = $7, attempts = $8, retry_after = $9,
		analyzed_at = $10, updated_at = $11
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.PageCount, p.AnalysisStatus, p.AnalysisError, p.AnalysisModel,
		p.AttributeSet, p.AnalysisSummary, p.Attempts, p.RetryAfter,
		p.AnalyzedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("projectRepo.UpdateAnalysis: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// ClaimQueued atomically flips up to limit queued projects whose retry window
// has passed to processing, so concurrent workers never pick up the same
// project twice.
func (r *projectRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Project, error) {
	query := `UPDATE projects SET analysis_status = $1, updated_at = NOW()
	WHERE id IN (
		SELECT id FROM projects
		WHERE analysis_status = $2 AND (retry_after IS NULL OR retry_after <= NOW())
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	)
	RETURNING *`

	var projects []domain.Project
	err := r.db.SelectContext(ctx, &projects, query,
		domain.AnalysisStatusProcessing, domain.AnalysisStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.ClaimQueued: %w", err)
	}
	return projects, nil
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("projectRepo.Delete: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
