package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

var assignmentColumnNames = []string{"id", "teacher_id", "class_id", "section", "grade", "subject", "day", "day_index", "time_label", "time_minutes", "is_active", "created_by", "updated_by", "created_at", "updated_at"}

func newTeacherAssignmentMock(t *testing.T) (*TeacherAssignmentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	repo := NewTeacherAssignmentRepository(sqlx.NewDb(db, "sqlmock"), nil)
	fixed := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	return repo, mock, func() { db.Close() }
}

func physicsMonday() *models.TeacherAssignment {
	a := &models.TeacherAssignment{
		TeacherID: "teacher-1",
		ClassID:   "class-10",
		Section:   "A",
		Grade:     "10",
		Subject:   "Physics",
		CreatedBy: "admin-1",
	}
	a.SetSlot(models.Slot{Day: models.Monday, Minutes: 600})
	return a
}

func TestTeacherAssignmentRepositoryCreate(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO teacher_assignments").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "class-10", "A", "10", "Physics", "Monday", 1, "10:00 AM", 600, true, "admin-1", "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := physicsMonday()
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.True(t, assignment.IsActive)
	assert.Equal(t, assignment.CreatedAt, assignment.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryCreateRejectsIncomplete(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	assignment := physicsMonday()
	assignment.Subject = ""
	err := repo.Create(context.Background(), assignment)
	assert.ErrorIs(t, err, models.ErrIncompleteAssignment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryCreateUniqueViolation(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO teacher_assignments").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), physicsMonday())
	assert.True(t, errors.Is(err, ErrSlotTaken))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryCreateBatch(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	first := *physicsMonday()
	second := *physicsMonday()
	second.SetSlot(models.Slot{Day: models.Tuesday, Minutes: 600})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO teacher_assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	batch := []models.TeacherAssignment{first, second}
	require.NoError(t, repo.CreateBatch(context.Background(), batch))
	assert.NotEmpty(t, batch[0].ID)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryCreateBatchRollsBack(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO teacher_assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_assignments").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []models.TeacherAssignment{*physicsMonday(), *physicsMonday()})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryList(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(assignmentColumnNames).
		AddRow("assign-1", "teacher-1", "class-10", "A", "10", "Physics", "Monday", 1, "10:00 AM", 600, true, "admin-1", "admin-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM teacher_assignments WHERE 1=1 AND is_active AND teacher_id = $1 AND day = $2 " + assignmentOrder + " LIMIT 20 OFFSET 0")).
		WithArgs("teacher-1", "Monday").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teacher_assignments WHERE 1=1 AND is_active AND teacher_id = $1 AND day = $2")).
		WithArgs("teacher-1", "Monday").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.AssignmentFilter{TeacherID: "teacher-1", Day: models.Monday})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.Monday, list[0].Day)
	assert.Equal(t, 600, list[0].TimeMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryListHonoursLargePageSize(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM teacher_assignments WHERE 1=1 AND is_active " + assignmentOrder + " LIMIT 150 OFFSET 150")).
		WillReturnRows(sqlmock.NewRows(assignmentColumnNames))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teacher_assignments WHERE 1=1 AND is_active")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(160))

	_, total, err := repo.List(context.Background(), models.AssignmentFilter{Page: 2, PageSize: 150})
	require.NoError(t, err)
	assert.Equal(t, 160, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryListByTeacher(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM teacher_assignments WHERE teacher_id = $1 AND is_active " + assignmentOrder)).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows(assignmentColumnNames))

	list, err := repo.ListByTeacher(context.Background(), "teacher-1", false)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryUpdateMissing(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE teacher_assignments SET teacher_id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assignment := physicsMonday()
	assignment.ID = "assign-1"
	err := repo.Update(context.Background(), assignment)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryUpdateAdvancesTimestamp(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE teacher_assignments SET teacher_id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assignment := physicsMonday()
	assignment.ID = "assign-1"
	assignment.UpdatedAt = repo.now()
	before := assignment.UpdatedAt
	require.NoError(t, repo.Update(context.Background(), assignment))
	assert.True(t, assignment.UpdatedAt.After(before))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositorySoftDelete(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_assignments SET is_active = FALSE")).
		WithArgs("assign-1", "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "assign-1", "admin-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositorySoftDeleteIsIdempotent(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_assignments SET is_active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_assignments WHERE id = $1")).
		WithArgs("assign-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	require.NoError(t, repo.SoftDelete(context.Background(), "assign-1", "admin-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositorySoftDeleteMissing(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_assignments SET is_active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_assignments WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	err := repo.SoftDelete(context.Background(), "ghost", "admin-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositorySoftDeleteByKey(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE teacher_assignments SET is_active = FALSE, updated_by = $5")).
		WithArgs("teacher-1", "class-10", "A", "Physics", "admin-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("assign-1").AddRow("assign-2"))

	ids, err := repo.SoftDeleteByKey(context.Background(), models.AssignmentKey{TeacherID: "teacher-1", ClassID: "class-10", Section: "A", Subject: "Physics"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"assign-1", "assign-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryActiveCounts(t *testing.T) {
	repo, mock, cleanup := newTeacherAssignmentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT teacher_id, class_id, subject, COUNT(*) AS count FROM teacher_assignments WHERE is_active GROUP BY teacher_id, class_id, subject")).
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "class_id", "subject", "count"}).
			AddRow("teacher-1", "class-10", "Physics", 2).
			AddRow("teacher-2", "class-11", "Math", 1))

	counts, err := repo.ActiveCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherAssignmentRepositoryObservesQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var labels []string
	repo := NewTeacherAssignmentRepository(sqlx.NewDb(db, "sqlmock"), func(label string, _ time.Duration) {
		labels = append(labels, label)
	})
	mock.ExpectQuery("SELECT teacher_id").WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "class_id", "subject", "count"}))

	_, err = repo.ActiveCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"assignment_active_counts"}, labels)
}
