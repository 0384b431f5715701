package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newDirectoryMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, active FROM teachers WHERE id = $1")).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "active"}).AddRow("teacher-1", "Siti Rahma", true))

	teacher, err := repo.FindByID(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "Siti Rahma", teacher.FullName)
	assert.True(t, teacher.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newDirectoryMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, active FROM teachers WHERE id = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
