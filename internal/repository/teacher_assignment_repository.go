package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

// ErrSlotTaken is returned when the storage-level uniqueness guarantee on
// (teacher, day, time) for active assignments rejects a write.
var ErrSlotTaken = errors.New("teacher slot already taken")

const uniqueViolation = "23505"

// defaultPageSize applies when a caller passes no page size.
const defaultPageSize = 20

const assignmentColumns = `id, teacher_id, class_id, section, grade, subject, day, day_index, time_label, time_minutes, is_active, created_by, updated_by, created_at, updated_at`

const assignmentOrder = `ORDER BY day_index ASC, time_minutes ASC, created_at ASC`

// QueryObserver receives storage timings, typically MetricsService.ObserveDBQuery.
type QueryObserver func(label string, duration time.Duration)

// TeacherAssignmentRepository persists teacher assignments in PostgreSQL.
type TeacherAssignmentRepository struct {
	db      *sqlx.DB
	observe QueryObserver
	now     func() time.Time
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB, observe QueryObserver) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db, observe: observe, now: func() time.Time { return time.Now().UTC() }}
}

func (r *TeacherAssignmentRepository) timed(label string) func() {
	if r.observe == nil {
		return func() {}
	}
	start := time.Now()
	return func() { r.observe(label, time.Since(start)) }
}

// FindByID loads an assignment regardless of its active flag.
func (r *TeacherAssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	defer r.timed("assignment_find")()
	query := `SELECT ` + assignmentColumns + ` FROM teacher_assignments WHERE id = $1`
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List returns assignments with optional filtering and pagination.
func (r *TeacherAssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, int, error) {
	defer r.timed("assignment_list")()
	base := "FROM teacher_assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active")
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, string(filter.Day))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s %s LIMIT %d OFFSET %d", assignmentColumns, base, assignmentOrder, size, offset)
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teacher assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teacher assignments: %w", err)
	}

	return assignments, total, nil
}

// ListByTeacher returns assignments owned by teacher in slot order.
func (r *TeacherAssignmentRepository) ListByTeacher(ctx context.Context, teacherID string, includeInactive bool) ([]models.TeacherAssignment, error) {
	defer r.timed("assignment_list_teacher")()
	query := `SELECT ` + assignmentColumns + ` FROM teacher_assignments WHERE teacher_id = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ` + assignmentOrder
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// ListByClass returns active assignments for a class in slot order.
func (r *TeacherAssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignment, error) {
	defer r.timed("assignment_list_class")()
	query := `SELECT ` + assignmentColumns + ` FROM teacher_assignments WHERE class_id = $1 AND is_active ` + assignmentOrder
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list class assignments: %w", err)
	}
	return assignments, nil
}

// ListByDay returns a teacher's active assignments on one weekday ordered by time.
func (r *TeacherAssignmentRepository) ListByDay(ctx context.Context, teacherID string, day models.Weekday) ([]models.TeacherAssignment, error) {
	defer r.timed("assignment_list_day")()
	query := `SELECT ` + assignmentColumns + ` FROM teacher_assignments WHERE teacher_id = $1 AND day = $2 AND is_active ` + assignmentOrder
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID, string(day)); err != nil {
		return nil, fmt.Errorf("list daily assignments: %w", err)
	}
	return assignments, nil
}

const insertAssignment = `INSERT INTO teacher_assignments (` + assignmentColumns + `)
		VALUES (:id, :teacher_id, :class_id, :section, :grade, :subject, :day, :day_index, :time_label, :time_minutes, :is_active, :created_by, :updated_by, :created_at, :updated_at)`

// Create inserts a new active assignment.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	defer r.timed("assignment_create")()
	r.prepareInsert(assignment, r.now())
	if err := assignment.Validate(); err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, insertAssignment, assignment); err != nil {
		return translateWriteError("create teacher assignment", err)
	}
	return nil
}

// CreateBatch inserts all assignments in one transaction or none of them.
func (r *TeacherAssignmentRepository) CreateBatch(ctx context.Context, assignments []models.TeacherAssignment) (err error) {
	defer r.timed("assignment_create_batch")()
	now := r.now()
	for i := range assignments {
		r.prepareInsert(&assignments[i], now)
		if err := assignments[i].Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch create assignments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range assignments {
		if _, err = tx.NamedExecContext(ctx, insertAssignment, &assignments[i]); err != nil {
			return translateWriteError("batch insert teacher assignment", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit batch create assignments: %w", err)
	}
	return nil
}

func (r *TeacherAssignmentRepository) prepareInsert(assignment *models.TeacherAssignment, now time.Time) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.IsActive = true
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.UpdatedBy == "" {
		assignment.UpdatedBy = assignment.CreatedBy
	}
}

// Update rewrites an active assignment. Inactive or missing ids yield sql.ErrNoRows.
func (r *TeacherAssignmentRepository) Update(ctx context.Context, assignment *models.TeacherAssignment) error {
	defer r.timed("assignment_update")()
	if err := assignment.Validate(); err != nil {
		return err
	}
	updatedAt := r.now()
	if !updatedAt.After(assignment.UpdatedAt) {
		updatedAt = assignment.UpdatedAt.Add(time.Microsecond)
	}
	previous := assignment.UpdatedAt
	assignment.UpdatedAt = updatedAt

	const query = `UPDATE teacher_assignments SET teacher_id = :teacher_id, class_id = :class_id, section = :section, grade = :grade, subject = :subject,
		day = :day, day_index = :day_index, time_label = :time_label, time_minutes = :time_minutes, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id AND is_active`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		assignment.UpdatedAt = previous
		return translateWriteError("update teacher assignment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		assignment.UpdatedAt = previous
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks an assignment inactive. Deleting an already inactive id is
// a no-op; unknown ids yield sql.ErrNoRows.
func (r *TeacherAssignmentRepository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	defer r.timed("assignment_soft_delete")()
	const query = `UPDATE teacher_assignments SET is_active = FALSE, updated_by = $2, updated_at = $3 WHERE id = $1 AND is_active`
	result, err := r.db.ExecContext(ctx, query, id, deletedBy, r.now())
	if err != nil {
		return fmt.Errorf("soft delete teacher assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM teacher_assignments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("check teacher assignment: %w", err)
	}
	return nil
}

// SoftDeleteByKey deactivates every active assignment matching key and returns their ids.
func (r *TeacherAssignmentRepository) SoftDeleteByKey(ctx context.Context, key models.AssignmentKey, deletedBy string) ([]string, error) {
	defer r.timed("assignment_soft_delete_key")()
	const query = `UPDATE teacher_assignments SET is_active = FALSE, updated_by = $5, updated_at = $6
		WHERE teacher_id = $1 AND class_id = $2 AND section = $3 AND subject = $4 AND is_active
		RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, key.TeacherID, key.ClassID, key.Section, key.Subject, deletedBy, r.now()); err != nil {
		return nil, fmt.Errorf("soft delete assignments by key: %w", err)
	}
	return ids, nil
}

// ActiveCounts groups active assignments by teacher, class and subject.
func (r *TeacherAssignmentRepository) ActiveCounts(ctx context.Context) ([]models.AssignmentCount, error) {
	defer r.timed("assignment_active_counts")()
	const query = `SELECT teacher_id, class_id, subject, COUNT(*) AS count FROM teacher_assignments WHERE is_active GROUP BY teacher_id, class_id, subject`
	var rows []models.AssignmentCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count active assignments: %w", err)
	}
	return rows, nil
}

// Ping checks the database connection for the readiness check.
func (r *TeacherAssignmentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func translateWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrSlotTaken)
	}
	return fmt.Errorf("%s: %w", op, err)
}
