package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type bookingStore interface {
	Create(ctx context.Context, res *models.Reservation) error
	Delete(ctx context.Context, id string) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.Reservation, error)
	FindClashes(ctx context.Context, roomID string, date time.Time, startMinute, endMinute int, excludeTimetableID string) ([]models.Reservation, error)
}

// ReservationSynchronizer keeps the room-booking store consistent with
// timetable lifecycle transitions: it expands weekly templates into dated
// reservation instances on validation and tears down exactly the instances
// it created on invalidation or deletion.
type ReservationSynchronizer struct {
	store       bookingStore
	concurrency int
	logger      *zap.Logger
}

// NewReservationSynchronizer builds a synchronizer issuing at most
// concurrency booking calls in flight per batch.
func NewReservationSynchronizer(store bookingStore, concurrency int, logger *zap.Logger) *ReservationSynchronizer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationSynchronizer{store: store, concurrency: concurrency, logger: logger}
}

// Materialize creates one reservation per (entry, week) instance for every
// entry that requires one. The batch is logically atomic: on any failure all
// reservations created in this attempt are compensated with deletes before
// the error is returned. Returns the number of reservations created.
func (s *ReservationSynchronizer) Materialize(ctx context.Context, t models.Timetable, entries []models.ScheduleEntry) (int, error) {
	instances, err := expandInstances(t, entries)
	if err != nil {
		return 0, err
	}
	if len(instances) == 0 {
		return 0, nil
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		created  []string
		firstErr error
	)
	record := func(id string) {
		mu.Lock()
		created = append(created, id)
		mu.Unlock()
	}
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	jobs := make(chan models.Reservation)
	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for res := range jobs {
				if workCtx.Err() != nil {
					return
				}
				// Re-check occupancy just before booking: the detector ran
				// against a possibly-stale snapshot and another timetable may
				// have validated in between.
				clashes, err := s.store.FindClashes(workCtx, res.RoomID, res.Date, res.StartMinute, res.EndMinute, t.ID)
				if err != nil {
					fail(appErrors.Wrap(err, appErrors.ErrPartialMaterialization.Code, appErrors.ErrPartialMaterialization.Status, "booking pre-check failed"))
					return
				}
				if len(clashes) > 0 {
					fail(appErrors.Wrap(
						fmt.Errorf("room %s already booked on %s [%d, %d)", res.RoomID, res.Date.Format("2006-01-02"), res.StartMinute, res.EndMinute),
						appErrors.ErrReservationConflict.Code,
						appErrors.ErrReservationConflict.Status,
						appErrors.ErrReservationConflict.Message,
					))
					return
				}
				payload := res
				if err := s.store.Create(workCtx, &payload); err != nil {
					fail(appErrors.Wrap(err, appErrors.ErrPartialMaterialization.Code, appErrors.ErrPartialMaterialization.Status, appErrors.ErrPartialMaterialization.Message))
					return
				}
				record(payload.ID)
			}
		}()
	}

	for _, instance := range instances {
		select {
		case <-workCtx.Done():
		case jobs <- instance:
		}
		if workCtx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = appErrors.Wrap(ctx.Err(), appErrors.ErrPartialMaterialization.Code, appErrors.ErrPartialMaterialization.Status, "materialization cancelled")
	}
	if firstErr != nil {
		s.compensate(created)
		return 0, firstErr
	}
	return len(created), nil
}

// compensate deletes every reservation created in a failed attempt. Runs on
// a fresh context: the batch context is already cancelled by the time the
// saga unwinds.
func (s *ReservationSynchronizer) compensate(created []string) {
	if len(created) == 0 {
		return
	}
	ctx := context.Background()
	for _, id := range created {
		if err := s.store.Delete(ctx, id); err != nil {
			// A failed compensation leaves an orphan the next dematerialize
			// sweep will catch; log loudly and keep going.
			s.logger.Sugar().Errorw("compensating delete failed", "reservation_id", id, "error", err)
		}
	}
	s.logger.Sugar().Warnw("materialization rolled back", "compensated", len(created))
}

// Dematerialize removes every reservation whose origin references the
// timetable. Idempotent: a timetable with zero reservations is a no-op. If
// any individual delete fails the error is returned and the remaining rows
// are left for a retry.
func (s *ReservationSynchronizer) Dematerialize(ctx context.Context, timetableID string) (int, error) {
	reservations, err := s.store.ListByTimetable(ctx, timetableID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrDematerializationIncomplete.Code, appErrors.ErrDematerializationIncomplete.Status, "failed to list owned reservations")
	}
	deleted := 0
	for _, res := range reservations {
		if err := s.store.Delete(ctx, res.ID); err != nil {
			return deleted, appErrors.Wrap(err, appErrors.ErrDematerializationIncomplete.Code, appErrors.ErrDematerializationIncomplete.Status, appErrors.ErrDematerializationIncomplete.Message)
		}
		deleted++
	}
	return deleted, nil
}

// expandInstances computes every dated reservation a timetable's entries
// require. Instance dates are bounded by the semester end convention.
func expandInstances(t models.Timetable, entries []models.ScheduleEntry) ([]models.Reservation, error) {
	var instances []models.Reservation
	semesterEnd := t.SemesterEnd()

	sorted := make([]models.ScheduleEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, entry := range sorted {
		if !entry.RequiresReservation {
			continue
		}
		if entry.RoomID == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("entry %s requires a reservation but has no room", entry.ID))
		}
		for _, week := range entry.Weeks() {
			date := t.EntryDate(week, entry.DayOfWeek)
			if date.After(semesterEnd) {
				continue
			}
			entryID := entry.ID
			timetableID := t.ID
			weekIdx := week
			instances = append(instances, models.Reservation{
				RoomID:      *entry.RoomID,
				Date:        date,
				StartMinute: entry.StartMinute,
				EndMinute:   entry.EndMinute,
				Status:      models.ReservationApproved,
				Source:      models.SourceSystem,
				TimetableID: &timetableID,
				EntryID:     &entryID,
				Week:        &weekIdx,
			})
		}
	}
	return instances, nil
}
