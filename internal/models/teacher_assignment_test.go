package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeacherAssignmentSetSlot(t *testing.T) {
	var a TeacherAssignment
	a.SetSlot(Slot{Day: Wednesday, Minutes: 13*60 + 5})

	assert.Equal(t, Wednesday, a.Day)
	assert.Equal(t, 3, a.DayIndex)
	assert.Equal(t, 785, a.TimeMinutes)
	assert.Equal(t, "1:05 PM", a.Time)
	assert.Equal(t, Slot{Day: Wednesday, Minutes: 785}, a.Slot())
}

func TestTeacherAssignmentMatchesKey(t *testing.T) {
	a := TeacherAssignment{TeacherID: "t-1", ClassID: "c-10", Section: "A", Subject: "Mathematics"}
	assert.True(t, a.MatchesKey(AssignmentKey{TeacherID: "t-1", ClassID: "c-10", Section: "A", Subject: "Mathematics"}))
	assert.False(t, a.MatchesKey(AssignmentKey{TeacherID: "t-1", ClassID: "c-10", Section: "B", Subject: "Mathematics"}))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
}

func TestTeacherAssignmentValidate(t *testing.T) {
	a := TeacherAssignment{TeacherID: "t-1", ClassID: "c-10", Section: "A", Grade: "10", Subject: "Physics"}
	a.SetSlot(Slot{Day: Monday, Minutes: 600})
	assert.NoError(t, a.Validate())

	missing := TeacherAssignment{TeacherID: "t-1"}
	missing.SetSlot(Slot{Day: Monday, Minutes: 600})
	err := missing.Validate()
	assert.ErrorIs(t, err, ErrIncompleteAssignment)
	assert.Contains(t, err.Error(), "classId, grade, section, subject")

	badDay := a
	badDay.Day = "Funday"
	assert.ErrorIs(t, badDay.Validate(), ErrIncompleteAssignment)
}
