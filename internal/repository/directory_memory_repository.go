package repository

import (
	"context"
	"database/sql"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

// MemoryTeacherDirectory resolves teachers when the scheduler runs without
// Postgres. A nil or empty seed accepts every non-empty id.
type MemoryTeacherDirectory struct {
	ids map[string]struct{}
}

// NewMemoryTeacherDirectory seeds the directory with known teacher ids.
func NewMemoryTeacherDirectory(ids []string) *MemoryTeacherDirectory {
	return &MemoryTeacherDirectory{ids: toSet(ids)}
}

// FindByID returns an active teacher or sql.ErrNoRows.
func (d *MemoryTeacherDirectory) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	if !known(d.ids, id) {
		return nil, sql.ErrNoRows
	}
	return &models.Teacher{ID: id, FullName: id, Active: true}, nil
}

// MemoryClassDirectory is the class counterpart of MemoryTeacherDirectory.
type MemoryClassDirectory struct {
	ids map[string]struct{}
}

// NewMemoryClassDirectory seeds the directory with known class ids.
func NewMemoryClassDirectory(ids []string) *MemoryClassDirectory {
	return &MemoryClassDirectory{ids: toSet(ids)}
}

// FindByID returns the class or sql.ErrNoRows.
func (d *MemoryClassDirectory) FindByID(_ context.Context, id string) (*models.Class, error) {
	if !known(d.ids, id) {
		return nil, sql.ErrNoRows
	}
	return &models.Class{ID: id, Name: id}, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func known(set map[string]struct{}, id string) bool {
	if id == "" {
		return false
	}
	if len(set) == 0 {
		return true
	}
	_, ok := set[id]
	return ok
}
