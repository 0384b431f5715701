package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

func memoryAssignment(teacherID string, day models.Weekday, minutes int) *models.TeacherAssignment {
	a := &models.TeacherAssignment{
		TeacherID: teacherID,
		ClassID:   "class-10",
		Section:   "A",
		Grade:     "10",
		Subject:   "Physics",
		CreatedBy: "admin-1",
	}
	a.SetSlot(models.Slot{Day: day, Minutes: minutes})
	return a
}

func TestMemoryRepositoryCreateAndFind(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	assignment := memoryAssignment("teacher-1", models.Monday, 600)
	require.NoError(t, repo.Create(ctx, assignment))
	require.NotEmpty(t, assignment.ID)

	found, err := repo.FindByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM", found.Time)
	assert.True(t, found.IsActive)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestMemoryRepositoryEnforcesUniqueActiveSlot(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 600)))
	err := repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 600))
	assert.ErrorIs(t, err, ErrSlotTaken)

	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-2", models.Monday, 600)))
	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Tuesday, 600)))
}

func TestMemoryRepositorySoftDeleteFreesSlot(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	first := memoryAssignment("teacher-1", models.Monday, 600)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.SoftDelete(ctx, first.ID, "admin-2"))
	require.NoError(t, repo.SoftDelete(ctx, first.ID, "admin-2"))

	stored, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "admin-2", stored.UpdatedBy)

	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 600)))

	assert.ErrorIs(t, repo.SoftDelete(ctx, "ghost", "admin-2"), sql.ErrNoRows)
}

func TestMemoryRepositoryCreateBatchIsAllOrNothing(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	batch := []models.TeacherAssignment{
		*memoryAssignment("teacher-1", models.Monday, 600),
		*memoryAssignment("teacher-1", models.Monday, 600),
	}
	assert.ErrorIs(t, repo.CreateBatch(ctx, batch), ErrSlotTaken)

	list, err := repo.ListByTeacher(ctx, "teacher-1", true)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryRepositoryCancelledContextAppliesNothing(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 600))
	assert.ErrorIs(t, err, context.Canceled)

	list, err := repo.ListByTeacher(context.Background(), "teacher-1", true)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryRepositoryOrdersBySlot(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Wednesday, 480)))
	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 780)))
	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 540)))

	list, err := repo.ListByTeacher(ctx, "teacher-1", false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "9:00 AM", list[0].Time)
	assert.Equal(t, "1:00 PM", list[1].Time)
	assert.Equal(t, models.Wednesday, list[2].Day)

	daily, err := repo.ListByDay(ctx, "teacher-1", models.Monday)
	require.NoError(t, err)
	assert.Len(t, daily, 2)
}

func TestMemoryRepositoryUpdate(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	assignment := memoryAssignment("teacher-1", models.Monday, 600)
	require.NoError(t, repo.Create(ctx, assignment))
	createdAt := assignment.CreatedAt

	assignment.SetSlot(models.Slot{Day: models.Thursday, Minutes: 660})
	assignment.UpdatedBy = "admin-3"
	require.NoError(t, repo.Update(ctx, assignment))
	assert.True(t, assignment.UpdatedAt.After(createdAt))
	assert.Equal(t, createdAt, assignment.CreatedAt)

	// Old slot is released.
	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 600)))

	require.NoError(t, repo.SoftDelete(ctx, assignment.ID, "admin-3"))
	assert.ErrorIs(t, repo.Update(ctx, assignment), sql.ErrNoRows)
}

func TestMemoryRepositoryListPaginates(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()
	for _, minutes := range []int{420, 480, 540} {
		require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Friday, minutes)))
	}

	page, total, err := repo.List(ctx, models.AssignmentFilter{TeacherID: "teacher-1", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, 540, page[0].TimeMinutes)

	empty, total, err := repo.List(ctx, models.AssignmentFilter{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, empty)
}

func TestMemoryRepositorySoftDeleteByKeyAndCounts(t *testing.T) {
	repo := NewMemoryTeacherAssignmentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Monday, 600)))
	require.NoError(t, repo.Create(ctx, memoryAssignment("teacher-1", models.Tuesday, 600)))
	other := memoryAssignment("teacher-1", models.Friday, 600)
	other.Subject = "Chemistry"
	require.NoError(t, repo.Create(ctx, other))

	counts, err := repo.ActiveCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "Chemistry", counts[0].Subject)
	assert.Equal(t, 2, counts[1].Count)

	key := models.AssignmentKey{TeacherID: "teacher-1", ClassID: "class-10", Section: "A", Subject: "Physics"}
	ids, err := repo.SoftDeleteByKey(ctx, key, "admin-1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	remaining, err := repo.ListByTeacher(ctx, "teacher-1", false)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Chemistry", remaining[0].Subject)

	ids, err = repo.SoftDeleteByKey(ctx, key, "admin-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
