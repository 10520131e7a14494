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

type completenessRepo struct {
	db *sqlx.DB
}

// NewCompletenessRepo creates a new PostgreSQL-backed CompletenessRepository.
func NewCompletenessRepo(db *sqlx.DB) port.CompletenessRepository {
	return &completenessRepo{db: db}
}

func (r *completenessRepo) Create(ctx context.Context, c *domain.CompletenessCheck) error {
	c.CreatedAt = time.Now().UTC()

	query := `INSERT INTO completeness_checks (
		id, project_id, application_type, status, entries, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ProjectID, c.ApplicationType, c.Status, c.Entries, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("completenessRepo.Create: %w", err)
	}
	return nil
}

func (r *completenessRepo) GetLatestByProject(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error) {
	var c domain.CompletenessCheck
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM completeness_checks WHERE project_id = $1 ORDER BY created_at DESC LIMIT 1", projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletenessNotFound
		}
		return nil, fmt.Errorf("completenessRepo.GetLatestByProject: %w", err)
	}
	return &c, nil
}
