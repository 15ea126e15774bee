package service

import (
	"context"
	"time"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

// Generate runs the registered optimizer port for a timetable and returns a
// re-validated proposal. Nothing is persisted: the caller reviews the
// proposal and submits it through the entries endpoint like any other
// authoring payload.
func (s *TimetableService) Generate(ctx context.Context, id string, req dto.GenerateRequest) (*ProposalOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	if s.runner == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no optimizer registered")
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Editable() {
		return nil, appErrors.Clone(appErrors.ErrIllegalTransition, "proposals can only be generated for draft or invalidated timetables")
	}

	rooms, err := s.catalog.RoomsByID(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room inventory")
	}
	roomList, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room inventory")
	}
	teachers, err := s.catalog.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher roster")
	}
	constraints, err := s.constraints.ListActive(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraints")
	}
	snapshot, err := s.reservations.ListApproved(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation snapshot")
	}

	loads := make([]models.ModuleLoad, 0, len(req.Loads))
	for _, load := range req.Loads {
		loads = append(loads, models.ModuleLoad{
			ModuleID:     load.ModuleID,
			AtomKind:     models.AtomKind(load.AtomKind),
			TeacherID:    load.TeacherID,
			AudienceKind: models.AudienceKind(load.AudienceKind),
			AudienceID:   load.AudienceID,
			AudienceSize: load.AudienceSize,
			WeeklyHours:  load.WeeklyHours,
			NeedsRoom:    load.NeedsRoom,
		})
	}

	input := models.OptimizationInput{
		Loads:       loads,
		Teachers:    teachers,
		Rooms:       roomList,
		Constraints: constraints,
		StartWeek:   1,
		EndWeek:     16,
	}

	budget := OptimizerBudget{
		MaxIterations: req.MaxIterations,
		Timeout:       time.Duration(req.TimeoutSecs) * time.Second,
	}
	return s.runner.Run(ctx, *t, input, snapshot, rooms, budget)
}
