package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type constraintStoreStub struct {
	created     []*models.Constraint
	deactivated []string
	active      []models.Constraint
}

func (s *constraintStoreStub) Create(_ context.Context, c *models.Constraint) error {
	c.ID = "c-1"
	c.Active = true
	s.created = append(s.created, c)
	return nil
}

func (s *constraintStoreStub) Deactivate(_ context.Context, id string) error {
	if id == "missing" {
		return sql.ErrNoRows
	}
	s.deactivated = append(s.deactivated, id)
	return nil
}

func (s *constraintStoreStub) ListActive(_ context.Context, _ string) ([]models.Constraint, error) {
	return s.active, nil
}

func validConstraintRequest() dto.CreateConstraintRequest {
	params, _ := json.Marshal(models.ConstraintParams{TeacherID: "t1", BlackoutDays: []int{5}})
	return dto.CreateConstraintRequest{
		Description: "t1 unavailable on Fridays",
		Target:      "TEACHER",
		Class:       "MANDATORY",
		Weight:      8,
		Params:      params,
	}
}

func TestConstraintServiceAdd(t *testing.T) {
	store := &constraintStoreStub{}
	svc := NewConstraintService(store, nil, nil)

	constraint, err := svc.Add(context.Background(), validConstraintRequest())
	require.NoError(t, err)
	assert.Equal(t, "c-1", constraint.ID)
	assert.True(t, constraint.Active)
	assert.Equal(t, models.ClassMandatory, constraint.Class)
	require.Len(t, store.created, 1)
}

func TestConstraintServiceAddRejectsEmptyDescription(t *testing.T) {
	svc := NewConstraintService(&constraintStoreStub{}, nil, nil)

	req := validConstraintRequest()
	req.Description = ""
	_, err := svc.Add(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConstraintServiceAddRejectsWeightOutOfRange(t *testing.T) {
	svc := NewConstraintService(&constraintStoreStub{}, nil, nil)

	for _, weight := range []int{0, 11, -3} {
		req := validConstraintRequest()
		req.Weight = weight
		_, err := svc.Add(context.Background(), req)
		require.Error(t, err, "weight %d must be rejected", weight)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestConstraintServiceAddRejectsMalformedParams(t *testing.T) {
	svc := NewConstraintService(&constraintStoreStub{}, nil, nil)

	req := validConstraintRequest()
	req.Params = json.RawMessage(`{"blackout_days": "not-an-array"}`)
	_, err := svc.Add(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConstraintServiceDeactivate(t *testing.T) {
	store := &constraintStoreStub{}
	svc := NewConstraintService(store, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "c-1"))
	assert.Equal(t, []string{"c-1"}, store.deactivated)

	err := svc.Deactivate(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Deactivate(context.Background(), "")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConstraintServiceListActiveTargetGuard(t *testing.T) {
	store := &constraintStoreStub{active: []models.Constraint{{ID: "c-1", Active: true}}}
	svc := NewConstraintService(store, nil, nil)

	constraints, err := svc.ListActive(context.Background(), "TEACHER")
	require.NoError(t, err)
	assert.Len(t, constraints, 1)

	_, err = svc.ListActive(context.Background(), "WEATHER")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
