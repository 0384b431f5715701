package repository

import (
	"context"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

// AssignmentStore is the full surface both assignment backends provide.
type AssignmentStore interface {
	FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, int, error)
	ListByTeacher(ctx context.Context, teacherID string, includeInactive bool) ([]models.TeacherAssignment, error)
	ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignment, error)
	ListByDay(ctx context.Context, teacherID string, day models.Weekday) ([]models.TeacherAssignment, error)
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	CreateBatch(ctx context.Context, assignments []models.TeacherAssignment) error
	Update(ctx context.Context, assignment *models.TeacherAssignment) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
	SoftDeleteByKey(ctx context.Context, key models.AssignmentKey, deletedBy string) ([]string, error)
	ActiveCounts(ctx context.Context) ([]models.AssignmentCount, error)
	Ping(ctx context.Context) error
}

// TeacherFinder resolves teachers by id.
type TeacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// ClassFinder resolves classes by id.
type ClassFinder interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

var (
	_ AssignmentStore = (*TeacherAssignmentRepository)(nil)
	_ AssignmentStore = (*MemoryTeacherAssignmentRepository)(nil)
	_ TeacherFinder   = (*TeacherRepository)(nil)
	_ TeacherFinder   = (*MemoryTeacherDirectory)(nil)
	_ ClassFinder     = (*ClassRepository)(nil)
	_ ClassFinder     = (*MemoryClassDirectory)(nil)
)
