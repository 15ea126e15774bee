package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func reservationRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "room_id", "date", "start_minute", "end_minute", "status", "source", "timetable_id", "entry_id", "week", "created_at"})
	now := time.Now().UTC()
	for i, id := range ids {
		week := i + 1
		rows.AddRow(id, "amphi-1", now.AddDate(0, 0, i*7), 540, 630, "APPROVED", "SYSTEM", "tt-1", "e1", week, now)
	}
	return rows
}

func TestReservationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetableID := "tt-1"
	res := &models.Reservation{
		RoomID:      "amphi-1",
		Date:        time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		StartMinute: 540,
		EndMinute:   630,
		Source:      models.SourceSystem,
		TimetableID: &timetableID,
	}
	require.NoError(t, repo.Create(context.Background(), res))
	require.NotEmpty(t, res.ID)
	require.Equal(t, models.ReservationApproved, res.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryDeleteIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)

	// Zero affected rows is still success: dematerialize may retry.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id")).
		WithArgs("res-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Delete(context.Background(), "res-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, room_id, date, start_minute, end_minute")).
		WithArgs("tt-1", models.SourceSystem).
		WillReturnRows(reservationRows("res-1", "res-2"))

	reservations, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryFindClashes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	date := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, room_id, date, start_minute, end_minute")).
		WithArgs(models.ReservationApproved, "amphi-1", date, 630, 540, "tt-2").
		WillReturnRows(reservationRows("res-1"))

	clashes, err := repo.FindClashes(context.Background(), "amphi-1", date, 540, 630, "tt-2")
	require.NoError(t, err)
	require.Len(t, clashes, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
