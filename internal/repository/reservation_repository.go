package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// ReservationRepository is the engine's gateway to the room-booking store.
// System-generated rows live alongside manual bookings made elsewhere in the
// dashboard; the engine only ever touches rows whose origin it owns.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, room_id, date, start_minute, end_minute, status, source, timetable_id, entry_id, week, created_at`

// Create books one dated reservation instance.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	if res.Status == "" {
		res.Status = models.ReservationApproved
	}

	const query = `INSERT INTO reservations (id, room_id, date, start_minute, end_minute, status, source, timetable_id, entry_id, week, created_at) VALUES (:id, :room_id, :date, :start_minute, :end_minute, :status, :source, :timetable_id, :entry_id, :week, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// Delete removes a single reservation by id. Deleting an absent row is not
// an error; dematerialization must stay idempotent.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// ListByTimetable returns every system-generated reservation whose origin
// references the timetable.
func (r *ReservationRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE timetable_id = $1 AND source = $2 ORDER BY date ASC, start_minute ASC`, reservationColumns)
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, timetableID, models.SourceSystem); err != nil {
		return nil, fmt.Errorf("list reservations by timetable: %w", err)
	}
	return reservations, nil
}

// CountByTimetable returns the number of system-generated reservations owned
// by the timetable.
func (r *ReservationRepository) CountByTimetable(ctx context.Context, timetableID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reservations WHERE timetable_id = $1 AND source = $2`, timetableID, models.SourceSystem); err != nil {
		return 0, fmt.Errorf("count reservations by timetable: %w", err)
	}
	return count, nil
}

// ListApproved returns the approved reservations of every other timetable
// plus manual bookings, i.e. the occupancy snapshot conflict detection runs
// against. The snapshot is read fresh on every call; no caching.
func (r *ReservationRepository) ListApproved(ctx context.Context, excludeTimetableID string) ([]models.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE status = $1 AND (timetable_id IS NULL OR timetable_id <> $2) ORDER BY date ASC, start_minute ASC`, reservationColumns)
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, models.ReservationApproved, excludeTimetableID); err != nil {
		return nil, fmt.Errorf("list approved reservations: %w", err)
	}
	return reservations, nil
}

// FindClashes returns approved reservations for the same room and date whose
// time window overlaps the given one, excluding rows owned by the timetable
// being materialized.
func (r *ReservationRepository) FindClashes(ctx context.Context, roomID string, date time.Time, startMinute, endMinute int, excludeTimetableID string) ([]models.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE status = $1 AND room_id = $2 AND date = $3 AND start_minute < $4 AND end_minute > $5 AND (timetable_id IS NULL OR timetable_id <> $6)`, reservationColumns)
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, models.ReservationApproved, roomID, date, endMinute, startMinute, excludeTimetableID); err != nil {
		return nil, fmt.Errorf("find reservation clashes: %w", err)
	}
	return reservations, nil
}
