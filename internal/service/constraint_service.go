package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type constraintStore interface {
	Create(ctx context.Context, c *models.Constraint) error
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context, target string) ([]models.Constraint, error)
}

// ConstraintService manages the scheduling rule book.
type ConstraintService struct {
	store     constraintStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConstraintService creates the service.
func NewConstraintService(store constraintStore, validate *validator.Validate, logger *zap.Logger) *ConstraintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintService{store: store, validator: validate, logger: logger}
}

// Add registers a new rule. Rules with an empty description or a weight
// outside 1-10 are rejected.
func (s *ConstraintService) Add(ctx context.Context, req dto.CreateConstraintRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid constraint payload")
	}

	constraint := &models.Constraint{
		Description: req.Description,
		Target:      models.ConstraintTarget(req.Target),
		Class:       models.ConstraintClass(req.Class),
		Weight:      req.Weight,
		Params:      types.JSONText(req.Params),
	}
	if _, err := constraint.DecodeParams(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid constraint params")
	}

	if err := s.store.Create(ctx, constraint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create constraint")
	}
	return constraint, nil
}

// Deactivate flips a rule inactive.
func (s *ConstraintService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "constraint id is required")
	}
	if err := s.store.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "constraint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate constraint")
	}
	return nil
}

// ListActive returns active rules, optionally narrowed by target type.
func (s *ConstraintService) ListActive(ctx context.Context, target string) ([]models.Constraint, error) {
	if target != "" {
		switch models.ConstraintTarget(target) {
		case models.TargetTeacher, models.TargetRoom, models.TargetSubject, models.TargetTime, models.TargetGroup:
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown constraint target")
		}
	}
	constraints, err := s.store.ListActive(ctx, target)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list constraints")
	}
	return constraints, nil
}
