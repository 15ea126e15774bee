package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timetableRows(id string, status models.TimetableStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "formation_id", "academic_year", "semester", "semester_start", "status", "created_by", "validated_by", "validated_at", "meta", "created_at", "updated_at"}).
		AddRow(id, "cs-l3", 2025, "S1", now, status, "alice", nil, nil, nil, now, now)
}

func TestTimetableRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.Timetable{
		FormationID:   "cs-l3",
		AcademicYear:  2025,
		Semester:      models.SemesterS1,
		SemesterStart: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:     "alice",
	}
	require.NoError(t, repo.Create(context.Background(), item))
	require.NotEmpty(t, item.ID)
	require.Equal(t, models.TimetableStatusDraft, item.Status)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, formation_id, academic_year, semester")).
		WithArgs(item.ID).
		WillReturnRows(timetableRows(item.ID, models.TimetableStatusDraft))

	found, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatusGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	actor := "bob"
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "tt-1", models.TimetableStatusDraft, models.TimetableStatusValidated, &actor, &now))

	// A stale expected status matches zero rows and must surface as not found.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), "tt-1", models.TimetableStatusDraft, models.TimetableStatusValidated, &actor, &now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE timetable_id")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "tt-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE timetable_id")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceEntries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	room := "amphi-1"
	entries := []models.ScheduleEntry{{
		ModuleID:     "mod-algo",
		AtomKind:     models.AtomLecture,
		TeacherID:    "t1",
		AudienceKind: models.AudienceSection,
		AudienceID:   "sec-a",
		AudienceSize: 30,
		DayOfWeek:    1,
		StartMinute:  480,
		EndMinute:    570,
		RoomID:       &room,
		Recurrence:   models.RecurrenceWeekly,
		StartWeek:    1,
		EndWeek:      16,
	}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE timetable_id")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET updated_at")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceEntries(context.Background(), "tt-1", entries))
	require.NotEmpty(t, entries[0].ID, "replace must assign ids to new entries")
	require.Equal(t, "tt-1", entries[0].TimetableID)
	require.NoError(t, mock.ExpectationsWereMet())
}
