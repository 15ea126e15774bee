package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type timetableStore interface {
	Create(ctx context.Context, t *models.Timetable) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	UpdateStatus(ctx context.Context, id string, from, to models.TimetableStatus, validatedBy *string, validatedAt *time.Time) error
	Delete(ctx context.Context, id string) error
	ListEntries(ctx context.Context, timetableID string) ([]models.ScheduleEntry, error)
	ReplaceEntries(ctx context.Context, timetableID string, entries []models.ScheduleEntry) error
}

type occupancyReader interface {
	ListApproved(ctx context.Context, excludeTimetableID string) ([]models.Reservation, error)
	CountByTimetable(ctx context.Context, timetableID string) (int, error)
}

type constraintLister interface {
	ListActive(ctx context.Context, target string) ([]models.Constraint, error)
}

type roomCatalog interface {
	RoomsByID(ctx context.Context) (map[string]models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

type reservationSynchronizer interface {
	Materialize(ctx context.Context, t models.Timetable, entries []models.ScheduleEntry) (int, error)
	Dematerialize(ctx context.Context, timetableID string) (int, error)
}

type conflictDetector interface {
	Detect(input DetectInput) []models.Conflict
	HasBlocking(conflicts []models.Conflict) bool
}

type eventPublisher interface {
	Publish(event Event)
}

type lifecycleMetrics interface {
	ObserveTransition(transition, outcome string)
	ObserveConflicts(conflicts []models.Conflict)
	AddReservations(created, deleted int)
}

// TimetableService owns the timetable lifecycle. Every transition is
// serialized per timetable id: validate, invalidate, publish and delete all
// read-then-write the same status and touch the same reservation set.
// Transitions on different timetables proceed in parallel.
type TimetableService struct {
	timetables   timetableStore
	reservations occupancyReader
	constraints  constraintLister
	catalog      roomCatalog
	sync         reservationSynchronizer
	detector     conflictDetector
	notifier     eventPublisher
	metrics      lifecycleMetrics
	runner       *OptimizerRunner
	validator    *validator.Validate
	logger       *zap.Logger

	locks sync.Map // timetable id -> *sync.Mutex
}

// RegisterOptimizer plugs a budgeted optimizer runner into the service.
// Optional: without one, generate requests fail with a precondition error.
func (s *TimetableService) RegisterOptimizer(runner *OptimizerRunner) {
	s.runner = runner
}

// NewTimetableService wires the lifecycle state machine.
func NewTimetableService(
	timetables timetableStore,
	reservations occupancyReader,
	constraints constraintLister,
	catalog roomCatalog,
	synchronizer reservationSynchronizer,
	detector conflictDetector,
	notifier eventPublisher,
	metrics lifecycleMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables:   timetables,
		reservations: reservations,
		constraints:  constraints,
		catalog:      catalog,
		sync:         synchronizer,
		detector:     detector,
		notifier:     notifier,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

func (s *TimetableService) lock(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Create opens an empty draft timetable.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateTimetableRequest, actor string) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	t := &models.Timetable{
		FormationID:   req.FormationID,
		AcademicYear:  req.AcademicYear,
		Semester:      models.Semester(req.Semester),
		SemesterStart: req.SemesterStart.UTC(),
		Status:        models.TimetableStatusDraft,
		CreatedBy:     actor,
	}
	if err := s.timetables.Create(ctx, t); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	return t, nil
}

// Get returns a timetable with its entries and owned reservation count.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableDetail, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.timetables.ListEntries(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	count, err := s.reservations.CountByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reservations")
	}
	return &dto.TimetableDetail{Timetable: *t, Entries: entries, ReservationCount: count}, nil
}

// List returns timetables matching the filter.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	timetables, total, err := s.timetables.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return timetables, total, nil
}

// ReplaceEntries swaps the entry set. Legal only while the timetable is
// draft or invalidated; re-editing after invalidation is an authoring
// action, not a lifecycle transition.
func (s *TimetableService) ReplaceEntries(ctx context.Context, id string, req dto.ReplaceEntriesRequest) ([]models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entries payload")
	}

	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Editable() {
		return nil, appErrors.Clone(appErrors.ErrIllegalTransition, fmt.Sprintf("entries are immutable while %s", t.Status))
	}

	entries := make([]models.ScheduleEntry, 0, len(req.Entries))
	for i, entryReq := range req.Entries {
		entry := entryReq.Entry()
		if err := checkEntryInvariants(entry); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: %v", i, err))
		}
		entries = append(entries, entry)
	}

	if err := s.timetables.ReplaceEntries(ctx, id, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace entries")
	}
	return entries, nil
}

// DetectConflicts runs the detector on demand. Read-only: may be invoked at
// any time without affecting lifecycle state.
func (s *TimetableService) DetectConflicts(ctx context.Context, id string) (*dto.ConflictReport, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.runDetection(ctx, t)
	if err != nil {
		return nil, err
	}
	return &dto.ConflictReport{
		TimetableID: id,
		Conflicts:   conflicts,
		Blocking:    s.detector.HasBlocking(conflicts),
	}, nil
}

// Validate transitions draft or invalidated -> validated: detection first,
// then atomic reservation materialization, then the status flip with audit
// fields. Accepting invalidated makes invalidate/validate a clean round trip
// on an unmodified timetable.
func (s *TimetableService) Validate(ctx context.Context, id, actor string) (*dto.TransitionResult, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		s.observe("validate", "error")
		return nil, err
	}
	if !t.Editable() {
		s.observe("validate", "illegal")
		return nil, illegalTransition(t.Status, models.TimetableStatusValidated)
	}

	conflicts, err := s.runDetection(ctx, t)
	if err != nil {
		s.observe("validate", "error")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveConflicts(conflicts)
	}
	if s.detector.HasBlocking(conflicts) {
		s.observe("validate", "rejected")
		s.publish(Event{Type: EventConflictsDetected, TimetableID: id, Payload: map[string]interface{}{"conflicts": len(conflicts)}})
		return nil, appErrors.Wrap(
			&models.ConflictError{Message: "timetable has blocking conflicts", Conflicts: conflicts},
			appErrors.ErrValidationFailed.Code,
			appErrors.ErrValidationFailed.Status,
			appErrors.ErrValidationFailed.Message,
		)
	}

	entries, err := s.timetables.ListEntries(ctx, id)
	if err != nil {
		s.observe("validate", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}

	created, err := s.sync.Materialize(ctx, *t, entries)
	if err != nil {
		// Materialize already compensated everything it created.
		s.observe("validate", "failed")
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.timetables.UpdateStatus(ctx, id, t.Status, models.TimetableStatusValidated, &actor, &now); err != nil {
		// Status flip failed after reservations were booked: unwind so no
		// reservation outlives a non-validated timetable.
		if _, demErr := s.sync.Dematerialize(ctx, id); demErr != nil {
			s.logger.Sugar().Errorw("status rollback left orphan reservations", "timetable_id", id, "error", demErr)
		}
		s.observe("validate", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record validation")
	}

	if s.metrics != nil {
		s.metrics.AddReservations(created, 0)
	}
	s.observe("validate", "ok")
	s.publish(Event{Type: EventTimetableValidated, TimetableID: id, Payload: map[string]interface{}{"reservations": created, "actor": actor}})
	s.logger.Sugar().Infow("timetable validated", "timetable_id", id, "reservations", created, "actor", actor)

	return &dto.TransitionResult{TimetableID: id, Status: models.TimetableStatusValidated, ReservationCount: created}, nil
}

// Invalidate transitions validated -> invalidated, tearing down every owned
// reservation first. Fail-closed: if any delete fails the timetable stays
// validated.
func (s *TimetableService) Invalidate(ctx context.Context, id, actor string) (*dto.TransitionResult, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		s.observe("invalidate", "error")
		return nil, err
	}
	if t.Status != models.TimetableStatusValidated {
		s.observe("invalidate", "illegal")
		return nil, illegalTransition(t.Status, models.TimetableStatusInvalidated)
	}

	deleted, err := s.sync.Dematerialize(ctx, id)
	if err != nil {
		s.observe("invalidate", "failed")
		return nil, err
	}

	if err := s.timetables.UpdateStatus(ctx, id, models.TimetableStatusValidated, models.TimetableStatusInvalidated, nil, nil); err != nil {
		s.observe("invalidate", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record invalidation")
	}

	if s.metrics != nil {
		s.metrics.AddReservations(0, deleted)
	}
	s.observe("invalidate", "ok")
	s.publish(Event{Type: EventTimetableInvalidated, TimetableID: id, Payload: map[string]interface{}{"reservations_removed": deleted, "actor": actor}})
	s.logger.Sugar().Infow("timetable invalidated", "timetable_id", id, "reservations_removed", deleted, "actor", actor)

	return &dto.TransitionResult{TimetableID: id, Status: models.TimetableStatusInvalidated, ReservationCount: 0}, nil
}

// Publish transitions validated -> published. Purely a visibility flag with
// no reservation side effects; published is terminal for this service.
func (s *TimetableService) Publish(ctx context.Context, id, actor string) (*dto.TransitionResult, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		s.observe("publish", "error")
		return nil, err
	}
	if t.Status != models.TimetableStatusValidated {
		s.observe("publish", "illegal")
		return nil, illegalTransition(t.Status, models.TimetableStatusPublished)
	}

	if err := s.timetables.UpdateStatus(ctx, id, models.TimetableStatusValidated, models.TimetableStatusPublished, nil, nil); err != nil {
		s.observe("publish", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}

	// The transition already committed; a failed count only degrades the
	// response payload.
	count, err := s.reservations.CountByTimetable(ctx, id)
	if err != nil {
		s.logger.Sugar().Warnw("reservation count unavailable after publish", "timetable_id", id, "error", err)
		count = 0
	}
	s.observe("publish", "ok")
	s.logger.Sugar().Infow("timetable published", "timetable_id", id, "actor", actor)
	return &dto.TransitionResult{TimetableID: id, Status: models.TimetableStatusPublished, ReservationCount: count}, nil
}

// Delete removes a timetable and its entries. Legal only from draft or
// invalidated, which guarantees no reservations exist; a validated or
// published timetable must be invalidated first.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		s.observe("delete", "error")
		return err
	}
	if !t.Editable() {
		s.observe("delete", "illegal")
		return illegalTransition(t.Status, "")
	}

	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observe("delete", "error")
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		s.observe("delete", "error")
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.locks.Delete(id)
	s.observe("delete", "ok")
	return nil
}

// runDetection assembles a fresh snapshot and runs the detector. The
// reservation snapshot is never cached across attempts.
func (s *TimetableService) runDetection(ctx context.Context, t *models.Timetable) ([]models.Conflict, error) {
	entries, err := s.timetables.ListEntries(ctx, t.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	snapshot, err := s.reservations.ListApproved(ctx, t.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation snapshot")
	}
	constraints, err := s.constraints.ListActive(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraints")
	}
	rooms, err := s.catalog.RoomsByID(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room inventory")
	}

	return s.detector.Detect(DetectInput{
		Timetable:    *t,
		Entries:      entries,
		Reservations: snapshot,
		Constraints:  constraints,
		Rooms:        rooms,
	}), nil
}

func (s *TimetableService) load(ctx context.Context, id string) (*models.Timetable, error) {
	t, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return t, nil
}

func (s *TimetableService) observe(transition, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(transition, outcome)
	}
}

func (s *TimetableService) publish(event Event) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
}

func illegalTransition(from models.TimetableStatus, to models.TimetableStatus) *appErrors.Error {
	msg := fmt.Sprintf("illegal transition from %s", from)
	if to != "" {
		msg = fmt.Sprintf("illegal transition from %s to %s", from, to)
	}
	return appErrors.Clone(appErrors.ErrIllegalTransition, msg)
}

// checkEntryInvariants enforces the structural rules authoring payloads must
// satisfy before any conflict detection runs.
func checkEntryInvariants(entry models.ScheduleEntry) error {
	if entry.StartMinute >= entry.EndMinute {
		return fmt.Errorf("start time %d must precede end time %d", entry.StartMinute, entry.EndMinute)
	}
	if entry.EndWeek < entry.StartWeek {
		return fmt.Errorf("end week %d precedes start week %d", entry.EndWeek, entry.StartWeek)
	}
	if entry.DayOfWeek < 1 || entry.DayOfWeek > 7 {
		return fmt.Errorf("day of week %d out of range", entry.DayOfWeek)
	}
	if entry.RequiresReservation && entry.RoomID == nil {
		return fmt.Errorf("a reservation-bearing entry must name a room")
	}
	return nil
}
