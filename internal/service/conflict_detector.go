package service

import (
	"github.com/noah-isme/sma-adp-scheduler/internal/models"
)

// DetectConflict returns the first active assignment in existing that
// occupies candidate's slot, ignoring the record identified by excludeID.
// Callers pass assignments of a single teacher with normalised slots.
func DetectConflict(candidate models.Slot, existing []models.TeacherAssignment, excludeID string) (*models.TeacherAssignment, bool) {
	for i := range existing {
		record := existing[i]
		if !record.IsActive {
			continue
		}
		if excludeID != "" && record.ID == excludeID {
			continue
		}
		if record.Slot() == candidate {
			return &record, true
		}
	}
	return nil, false
}

// HasConflict reports whether candidate collides with any active assignment.
func HasConflict(candidate models.Slot, existing []models.TeacherAssignment) bool {
	_, found := DetectConflict(candidate, existing, "")
	return found
}

// BatchConflict explains why one element of a batch cannot be stored.
type BatchConflict struct {
	// Index is the position of the rejected candidate.
	Index int
	// Existing is the stored assignment or the earlier batch element holding the slot.
	Existing models.TeacherAssignment
	// WithinBatch is true when the slot was claimed by an earlier candidate.
	WithinBatch bool
}

// DetectBatchConflicts checks every candidate against existing and against the
// candidates before it. Results are ordered by candidate index.
func DetectBatchConflicts(candidates []models.TeacherAssignment, existing []models.TeacherAssignment) []BatchConflict {
	var conflicts []BatchConflict
	claimed := make(map[models.Slot]int, len(candidates))
	for i, candidate := range candidates {
		slot := candidate.Slot()
		if record, found := DetectConflict(slot, existing, candidate.ID); found {
			conflicts = append(conflicts, BatchConflict{Index: i, Existing: *record})
			continue
		}
		if first, dup := claimed[slot]; dup {
			conflicts = append(conflicts, BatchConflict{Index: i, Existing: candidates[first], WithinBatch: true})
			continue
		}
		claimed[slot] = i
	}
	return conflicts
}
