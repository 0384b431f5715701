package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
)

// LegacyClassAssignment is one element of the old teacher-centric payload.
type LegacyClassAssignment struct {
	Class   string `json:"class" validate:"required"`
	Section string `json:"section" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Grade   string `json:"grade" validate:"required"`
	Time    string `json:"time" validate:"required"`
	Day     string `json:"day" validate:"required"`
}

// AssignClassesRequest is the legacy bulk payload.
type AssignClassesRequest struct {
	AssignedClasses []LegacyClassAssignment `json:"assignedClasses" validate:"required,min=1,dive"`
}

// RemoveSubjectAssignmentRequest is the legacy composite-key delete payload.
type RemoveSubjectAssignmentRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Section string `json:"section" validate:"required"`
	Subject string `json:"subject" validate:"required"`
}

// LegacyAssignmentService keeps the older teacher-centric endpoints working on
// top of independent assignment rows.
type LegacyAssignmentService struct {
	assignments *TeacherAssignmentService
}

// NewLegacyAssignmentService wraps the assignment service.
func NewLegacyAssignmentService(assignments *TeacherAssignmentService) *LegacyAssignmentService {
	return &LegacyAssignmentService{assignments: assignments}
}

// AssignClasses stores every element of the batch for teacherID, or none of
// them when any element is invalid or collides.
func (s *LegacyAssignmentService) AssignClasses(ctx context.Context, caller models.Caller, teacherID string, req AssignClassesRequest) (created []models.TeacherAssignment, err error) {
	svc := s.assignments
	defer svc.record("assign_classes", &err)
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	if err := svc.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assigned classes payload")
	}
	teacherID = strings.TrimSpace(teacherID)
	if err := svc.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	candidates := make([]models.TeacherAssignment, 0, len(req.AssignedClasses))
	checkedClasses := make(map[string]struct{})
	for i, item := range req.AssignedClasses {
		candidate, err := svc.buildCandidate(caller, CreateAssignmentRequest{
			TeacherID: teacherID,
			ClassID:   item.Class,
			Section:   item.Section,
			Grade:     item.Grade,
			Subject:   item.Subject,
			Day:       item.Day,
			Time:      item.Time,
		})
		if err != nil {
			return nil, annotateBatchError(err, i)
		}
		if _, ok := checkedClasses[candidate.ClassID]; !ok {
			if err := svc.ensureClass(ctx, candidate.ClassID); err != nil {
				return nil, annotateBatchError(err, i)
			}
			checkedClasses[candidate.ClassID] = struct{}{}
		}
		candidates = append(candidates, *candidate)
	}

	release, err := svc.lockTeachers(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := svc.store.ListByTeacher(ctx, teacherID, false)
	if err != nil {
		return nil, svc.storageError(ctx, err, "failed to load teacher assignments")
	}
	if conflicts := DetectBatchConflicts(candidates, existing); len(conflicts) > 0 {
		first := conflicts[0]
		rejected := candidates[first.Index]
		message := fmt.Sprintf("Time is already assigned (class %s, section %s, %s, %s)",
			rejected.ClassID, rejected.Section, rejected.Subject, rejected.Slot())
		svc.log(ctx).Info("assign classes conflict",
			zap.String("teacher_id", teacherID),
			zap.Int("index", first.Index),
			zap.Bool("within_batch", first.WithinBatch),
			zap.String("slot", rejected.Slot().String()),
		)
		return nil, conflictError(message, models.NewAssignmentConflict(first.Existing))
	}

	if err := svc.store.CreateBatch(ctx, candidates); err != nil {
		return nil, svc.writeError(ctx, err, &candidates[0], "failed to assign classes")
	}

	svc.log(ctx).Info("classes assigned",
		zap.String("teacher_id", teacherID),
		zap.Int("count", len(candidates)),
		zap.String("caller", caller.UserID),
	)
	return candidates, nil
}

// RemoveSubjectAssignment deletes by composite key and returns the removed ids.
func (s *LegacyAssignmentService) RemoveSubjectAssignment(ctx context.Context, caller models.Caller, teacherID string, req RemoveSubjectAssignmentRequest) ([]string, error) {
	return s.assignments.DeleteByKey(ctx, caller, teacherID, DeleteByKeyRequest(req))
}

func annotateBatchError(err error, index int) error {
	appErr := appErrors.FromError(err)
	if appErr.Code != appErrors.ErrValidation.Code && appErr.Code != appErrors.ErrNotFound.Code {
		return err
	}
	return appErrors.Clone(appErr, fmt.Sprintf("assignedClasses[%d]: %s", index, appErr.Message))
}
