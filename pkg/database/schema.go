package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the scheduler's own tables. The teachers and classes
// tables belong to the directory services and are only read.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teacher_assignments (
	id           UUID PRIMARY KEY,
	teacher_id   TEXT        NOT NULL,
	class_id     TEXT        NOT NULL,
	section      TEXT        NOT NULL,
	grade        TEXT        NOT NULL,
	subject      TEXT        NOT NULL,
	day          TEXT        NOT NULL,
	day_index    SMALLINT    NOT NULL,
	time_label   TEXT        NOT NULL,
	time_minutes SMALLINT    NOT NULL CHECK (time_minutes >= 0 AND time_minutes < 1440),
	is_active    BOOLEAN     NOT NULL DEFAULT TRUE,
	created_by   TEXT        NOT NULL DEFAULT '',
	updated_by   TEXT        NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_teacher_assignments_active_slot
	ON teacher_assignments (teacher_id, day, time_minutes) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS ix_teacher_assignments_teacher ON teacher_assignments (teacher_id, day_index, time_minutes)`,
	`CREATE INDEX IF NOT EXISTS ix_teacher_assignments_class ON teacher_assignments (class_id, day_index, time_minutes)`,
}

// EnsureSchema applies the scheduler schema idempotently inside one transaction.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema migration: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema migration: %w", err)
	}
	return nil
}
