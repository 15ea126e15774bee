package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func TestConstraintRepositoryCreateActivates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConstraintRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO constraints")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	constraint := &models.Constraint{
		Description: "no Friday labs",
		Target:      models.TargetTime,
		Class:       models.ClassMandatory,
		Weight:      10,
	}
	require.NoError(t, repo.Create(context.Background(), constraint))
	require.NotEmpty(t, constraint.ID)
	require.True(t, constraint.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConstraintRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE constraints SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Deactivate(context.Background(), "c-1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE constraints SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Deactivate(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConstraintRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "description", "target", "class", "weight", "active", "params", "created_at", "updated_at"}).
		AddRow("c-1", "no Friday labs", "TIME", "MANDATORY", 10, true, []byte(`{}`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, description, target, class, weight, active, params")).
		WithArgs("TIME").
		WillReturnRows(rows)

	constraints, err := repo.ListActive(context.Background(), "TIME")
	require.NoError(t, err)
	require.Len(t, constraints, 1)
	require.Equal(t, models.ClassMandatory, constraints[0].Class)
	require.NoError(t, mock.ExpectationsWereMet())
}
