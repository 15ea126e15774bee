package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// ConstraintRepository persists scheduling rules.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository creates a new constraint repository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

const constraintColumns = `id, description, target, class, weight, active, params, created_at, updated_at`

// Create stores a new rule.
func (r *ConstraintRepository) Create(ctx context.Context, c *models.Constraint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Active = true

	const query = `INSERT INTO constraints (id, description, target, class, weight, active, params, created_at, updated_at) VALUES (:id, :description, :target, :class, :weight, :active, :params, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create constraint: %w", err)
	}
	return nil
}

// Deactivate flips a rule inactive. Rules are never hard-deleted so past
// validation decisions stay explainable.
func (r *ConstraintRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE constraints SET active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate constraint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate constraint: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActive returns active rules, optionally narrowed to one target type.
func (r *ConstraintRepository) ListActive(ctx context.Context, target string) ([]models.Constraint, error) {
	var constraints []models.Constraint
	if target != "" {
		query := fmt.Sprintf(`SELECT %s FROM constraints WHERE active = TRUE AND target = $1 ORDER BY class ASC, weight DESC, created_at ASC`, constraintColumns)
		if err := r.db.SelectContext(ctx, &constraints, query, target); err != nil {
			return nil, fmt.Errorf("list active constraints: %w", err)
		}
		return constraints, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM constraints WHERE active = TRUE ORDER BY class ASC, weight DESC, created_at ASC`, constraintColumns)
	if err := r.db.SelectContext(ctx, &constraints, query); err != nil {
		return nil, fmt.Errorf("list active constraints: %w", err)
	}
	return constraints, nil
}
