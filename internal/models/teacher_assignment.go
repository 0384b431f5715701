package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TeacherAssignment binds a teacher to a class section, subject and weekly slot.
type TeacherAssignment struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacherId"`
	ClassID     string    `db:"class_id" json:"classId"`
	Section     string    `db:"section" json:"section"`
	Grade       string    `db:"grade" json:"grade"`
	Subject     string    `db:"subject" json:"subject"`
	Day         Weekday   `db:"day" json:"day"`
	DayIndex    int       `db:"day_index" json:"-"`
	Time        string    `db:"time_label" json:"time"`
	TimeMinutes int       `db:"time_minutes" json:"timeMinutes"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedBy   string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy   string    `db:"updated_by" json:"updatedBy,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Slot returns the comparable (day, minutes) pair of the assignment.
func (a TeacherAssignment) Slot() Slot {
	return Slot{Day: a.Day, Minutes: a.TimeMinutes}
}

// SetSlot stores a normalised slot on the assignment, keeping the derived
// columns in step.
func (a *TeacherAssignment) SetSlot(s Slot) {
	a.Day = s.Day
	a.DayIndex = s.Day.Index()
	a.TimeMinutes = s.Minutes
	a.Time = s.Label()
}

// ErrIncompleteAssignment is returned by stores asked to persist a record with
// missing or malformed fields.
var ErrIncompleteAssignment = errors.New("incomplete assignment")

// Validate checks the fields every persisted assignment must carry.
func (a TeacherAssignment) Validate() error {
	var missing []string
	for name, value := range map[string]string{
		"teacherId": a.TeacherID,
		"classId":   a.ClassID,
		"section":   a.Section,
		"grade":     a.Grade,
		"subject":   a.Subject,
		"time":      a.Time,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrIncompleteAssignment, strings.Join(missing, ", "))
	}
	if !a.Day.Valid() || a.DayIndex != a.Day.Index() {
		return fmt.Errorf("%w: invalid day %q", ErrIncompleteAssignment, a.Day)
	}
	if a.TimeMinutes < 0 || a.TimeMinutes >= 24*60 {
		return fmt.Errorf("%w: time out of range", ErrIncompleteAssignment)
	}
	return nil
}

// MatchesKey reports whether the assignment carries the composite key used by
// legacy callers that do not know assignment ids.
func (a TeacherAssignment) MatchesKey(key AssignmentKey) bool {
	return a.TeacherID == key.TeacherID &&
		a.ClassID == key.ClassID &&
		a.Section == key.Section &&
		a.Subject == key.Subject
}

// AssignmentKey addresses assignments by their semantic tuple instead of id.
type AssignmentKey struct {
	TeacherID string
	ClassID   string
	Section   string
	Subject   string
}

// AssignmentFilter describes list queries.
type AssignmentFilter struct {
	TeacherID       string
	ClassID         string
	Day             Weekday
	IncludeInactive bool
	Page            int
	PageSize        int
}

// AssignmentCount is one grouped row of active assignments.
type AssignmentCount struct {
	TeacherID string `db:"teacher_id"`
	ClassID   string `db:"class_id"`
	Subject   string `db:"subject"`
	Count     int    `db:"count"`
}

// AssignmentOverview summarises active assignments.
type AssignmentOverview struct {
	TotalAssignments int            `json:"totalAssignments"`
	TotalTeachers    int            `json:"totalTeachers"`
	TotalClasses     int            `json:"totalClasses"`
	BySubject        map[string]int `json:"bySubject"`
	ByTeacher        map[string]int `json:"byTeacher"`
	ByClass          map[string]int `json:"byClass"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}

// AssignmentConflict describes the existing assignment occupying a slot.
type AssignmentConflict struct {
	AssignmentID string  `json:"assignmentId,omitempty"`
	TeacherID    string  `json:"teacherId"`
	ClassID      string  `json:"classId"`
	Section      string  `json:"section"`
	Subject      string  `json:"subject"`
	Day          Weekday `json:"day"`
	Time         string  `json:"time"`
}

// NewAssignmentConflict captures the colliding record for error payloads.
func NewAssignmentConflict(existing TeacherAssignment) AssignmentConflict {
	return AssignmentConflict{
		AssignmentID: existing.ID,
		TeacherID:    existing.TeacherID,
		ClassID:      existing.ClassID,
		Section:      existing.Section,
		Subject:      existing.Subject,
		Day:          existing.Day,
		Time:         existing.Time,
	}
}

// AssignmentConflictError is returned when a teacher is already booked for a slot.
type AssignmentConflictError struct {
	Message  string             `json:"message"`
	Conflict AssignmentConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *AssignmentConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
