package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

// MemoryTeacherAssignmentRepository keeps assignments in process. It mirrors the
// Postgres repository, including the unique active slot per teacher.
type MemoryTeacherAssignmentRepository struct {
	mu      sync.RWMutex
	records map[string]models.TeacherAssignment
	slots   map[string]string
	now     func() time.Time
}

// NewMemoryTeacherAssignmentRepository constructs an empty store.
func NewMemoryTeacherAssignmentRepository() *MemoryTeacherAssignmentRepository {
	return &MemoryTeacherAssignmentRepository{
		records: make(map[string]models.TeacherAssignment),
		slots:   make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func slotIndexKey(a models.TeacherAssignment) string {
	return fmt.Sprintf("%s|%s|%d", a.TeacherID, a.Day, a.TimeMinutes)
}

// FindByID returns a copy of the record including inactive ones.
func (r *MemoryTeacherAssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &record, nil
}

// List filters, orders and paginates like the SQL implementation.
func (r *MemoryTeacherAssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, int, error) {
	matched, err := r.selectWhere(ctx, func(a models.TeacherAssignment) bool {
		if !filter.IncludeInactive && !a.IsActive {
			return false
		}
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			return false
		}
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			return false
		}
		if filter.Day != "" && a.Day != filter.Day {
			return false
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []models.TeacherAssignment{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// ListByTeacher returns a teacher's assignments in slot order.
func (r *MemoryTeacherAssignmentRepository) ListByTeacher(ctx context.Context, teacherID string, includeInactive bool) ([]models.TeacherAssignment, error) {
	return r.selectWhere(ctx, func(a models.TeacherAssignment) bool {
		return a.TeacherID == teacherID && (includeInactive || a.IsActive)
	})
}

// ListByClass returns a class's active assignments in slot order.
func (r *MemoryTeacherAssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignment, error) {
	return r.selectWhere(ctx, func(a models.TeacherAssignment) bool {
		return a.ClassID == classID && a.IsActive
	})
}

// ListByDay returns a teacher's active assignments for one weekday.
func (r *MemoryTeacherAssignmentRepository) ListByDay(ctx context.Context, teacherID string, day models.Weekday) ([]models.TeacherAssignment, error) {
	return r.selectWhere(ctx, func(a models.TeacherAssignment) bool {
		return a.TeacherID == teacherID && a.Day == day && a.IsActive
	})
}

func (r *MemoryTeacherAssignmentRepository) selectWhere(ctx context.Context, keep func(models.TeacherAssignment) bool) ([]models.TeacherAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	result := make([]models.TeacherAssignment, 0)
	for _, record := range r.records {
		if keep(record) {
			result = append(result, record)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.DayIndex != b.DayIndex {
			return a.DayIndex < b.DayIndex
		}
		if a.TimeMinutes != b.TimeMinutes {
			return a.TimeMinutes < b.TimeMinutes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return result, nil
}

// Create stores a new active assignment.
func (r *MemoryTeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	batch := []models.TeacherAssignment{*assignment}
	if err := r.CreateBatch(ctx, batch); err != nil {
		return err
	}
	*assignment = batch[0]
	return nil
}

// CreateBatch stores all assignments or none. Generated ids and timestamps are
// written back into the slice.
func (r *MemoryTeacherAssignmentRepository) CreateBatch(ctx context.Context, assignments []models.TeacherAssignment) error {
	now := r.now()
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.IsActive = true
		a.CreatedAt = now
		a.UpdatedAt = now
		if a.UpdatedBy == "" {
			a.UpdatedBy = a.CreatedBy
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	claimed := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		key := slotIndexKey(a)
		if _, taken := r.slots[key]; taken {
			return fmt.Errorf("create teacher assignment: %w", ErrSlotTaken)
		}
		if _, dup := claimed[key]; dup {
			return fmt.Errorf("batch insert teacher assignment: %w", ErrSlotTaken)
		}
		if _, exists := r.records[a.ID]; exists {
			return fmt.Errorf("create teacher assignment: duplicate id %s", a.ID)
		}
		claimed[key] = struct{}{}
	}

	for _, a := range assignments {
		r.records[a.ID] = a
		r.slots[slotIndexKey(a)] = a.ID
	}
	return nil
}

// Update replaces an active record.
func (r *MemoryTeacherAssignmentRepository) Update(ctx context.Context, assignment *models.TeacherAssignment) error {
	if err := assignment.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	current, ok := r.records[assignment.ID]
	if !ok || !current.IsActive {
		return sql.ErrNoRows
	}
	newKey := slotIndexKey(*assignment)
	if owner, taken := r.slots[newKey]; taken && owner != assignment.ID {
		return fmt.Errorf("update teacher assignment: %w", ErrSlotTaken)
	}

	updatedAt := r.now()
	if !updatedAt.After(current.UpdatedAt) {
		updatedAt = current.UpdatedAt.Add(time.Microsecond)
	}

	next := *assignment
	next.IsActive = true
	next.CreatedAt = current.CreatedAt
	next.CreatedBy = current.CreatedBy
	next.UpdatedAt = updatedAt

	delete(r.slots, slotIndexKey(current))
	r.slots[newKey] = next.ID
	r.records[next.ID] = next
	*assignment = next
	return nil
}

// SoftDelete deactivates a record; repeating it is a no-op.
func (r *MemoryTeacherAssignmentRepository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	record, ok := r.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	if record.IsActive {
		r.deactivateLocked(record, deletedBy)
	}
	return nil
}

// SoftDeleteByKey deactivates every active record matching key.
func (r *MemoryTeacherAssignmentRepository) SoftDeleteByKey(ctx context.Context, key models.AssignmentKey, deletedBy string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	for _, record := range r.records {
		if record.IsActive && record.MatchesKey(key) {
			r.deactivateLocked(record, deletedBy)
			ids = append(ids, record.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryTeacherAssignmentRepository) deactivateLocked(record models.TeacherAssignment, deletedBy string) {
	delete(r.slots, slotIndexKey(record))
	record.IsActive = false
	record.UpdatedBy = deletedBy
	updatedAt := r.now()
	if !updatedAt.After(record.UpdatedAt) {
		updatedAt = record.UpdatedAt.Add(time.Microsecond)
	}
	record.UpdatedAt = updatedAt
	r.records[record.ID] = record
}

// ActiveCounts groups active records by teacher, class and subject.
func (r *MemoryTeacherAssignmentRepository) ActiveCounts(ctx context.Context) ([]models.AssignmentCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type group struct{ teacher, class, subject string }

	r.mu.RLock()
	counts := make(map[group]int)
	for _, record := range r.records {
		if record.IsActive {
			counts[group{record.TeacherID, record.ClassID, record.Subject}]++
		}
	}
	r.mu.RUnlock()

	rows := make([]models.AssignmentCount, 0, len(counts))
	for g, n := range counts {
		rows = append(rows, models.AssignmentCount{TeacherID: g.teacher, ClassID: g.class, Subject: g.subject, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TeacherID != rows[j].TeacherID {
			return rows[i].TeacherID < rows[j].TeacherID
		}
		if rows[i].ClassID != rows[j].ClassID {
			return rows[i].ClassID < rows[j].ClassID
		}
		return rows[i].Subject < rows[j].Subject
	})
	return rows, nil
}

// Ping always succeeds for the in-process store.
func (r *MemoryTeacherAssignmentRepository) Ping(context.Context) error {
	return nil
}
