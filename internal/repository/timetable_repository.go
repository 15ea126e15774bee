package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// TimetableRepository provides persistence for timetables and their entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// BeginTxx exposes transaction creation for multi-repository operations.
func (r *TimetableRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

const timetableColumns = `id, formation_id, academic_year, semester, semester_start, status, created_by, validated_by, validated_at, meta, created_at, updated_at`

// Create stores a new draft timetable.
func (r *TimetableRepository) Create(ctx context.Context, t *models.Timetable) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = models.TimetableStatusDraft
	}

	const query = `INSERT INTO timetables (id, formation_id, academic_year, semester, semester_start, status, created_by, meta, created_at, updated_at) VALUES (:id, :formation_id, :academic_year, :semester, :semester_start, :status, :created_by, :meta, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// FindByID loads a timetable by id.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE id = $1`, timetableColumns)
	var t models.Timetable
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns timetables with optional filtering and pagination.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	base := "FROM timetables WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.FormationID != "" {
		conditions = append(conditions, fmt.Sprintf("formation_id = $%d", len(args)+1))
		args = append(args, filter.FormationID)
	}
	if filter.AcademicYear != 0 {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", timetableColumns, base, size, offset)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	return timetables, total, nil
}

// UpdateStatus transitions the timetable status, guarded by the expected
// current status so concurrent writers cannot clobber each other's
// transitions at the storage layer either.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, id string, from, to models.TimetableStatus, validatedBy *string, validatedAt *time.Time) error {
	const query = `UPDATE timetables SET status = $1, validated_by = COALESCE($2, validated_by), validated_at = COALESCE($3, validated_at), updated_at = $4 WHERE id = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, to, validatedBy, validatedAt, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable and its entries in one transaction.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE timetable_id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable entries: %w", err)
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, raErr := res.RowsAffected()
	if raErr == nil && affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete timetable: %w", err)
	}
	return nil
}

const entryColumns = `id, timetable_id, module_id, atom_kind, teacher_id, audience_kind, audience_id, audience_size, day_of_week, start_minute, end_minute, room_id, recurrence, start_week, end_week, requires_reservation, created_at`

// ListEntries returns the schedule entries of a timetable ordered by day and
// start time.
func (r *TimetableRepository) ListEntries(ctx context.Context, timetableID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_minute ASC, id ASC`, entryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// ReplaceEntries swaps the full entry set of a timetable atomically.
func (r *TimetableRepository) ReplaceEntries(ctx context.Context, timetableID string, entries []models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace entries: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE timetable_id = $1`, timetableID); err != nil {
		return fmt.Errorf("clear schedule entries: %w", err)
	}
	if err = r.bulkInsertEntries(ctx, tx, timetableID, entries); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE timetables SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), timetableID); err != nil {
		return fmt.Errorf("touch timetable: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace entries: %w", err)
	}
	return nil
}

func (r *TimetableRepository) bulkInsertEntries(ctx context.Context, exec sqlx.ExtContext, timetableID string, entries []models.ScheduleEntry) error {
	now := time.Now().UTC()
	for i := range entries {
		payload := entries[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		payload.TimetableID = timetableID
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO schedule_entries (id, timetable_id, module_id, atom_kind, teacher_id, audience_kind, audience_id, audience_size, day_of_week, start_minute, end_minute, room_id, recurrence, start_week, end_week, requires_reservation, created_at) VALUES (:id, :timetable_id, :module_id, :atom_kind, :teacher_id, :audience_kind, :audience_id, :audience_size, :day_of_week, :start_minute, :end_minute, :room_id, :recurrence, :start_week, :end_week, :requires_reservation, :created_at)`, &payload); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
		entries[i] = payload
	}
	return nil
}
