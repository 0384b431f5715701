package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	"github.com/noah-isme/sma-adp-scheduler/internal/repository"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/lock"
	"github.com/noah-isme/sma-adp-scheduler/pkg/logger"
)

type assignmentStore interface {
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
}

type teacherDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type classDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type idempotencyCache interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// CreateAssignmentRequest describes a new assignment.
type CreateAssignmentRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	ClassID   string `json:"classId" validate:"required"`
	Section   string `json:"section" validate:"required"`
	Grade     string `json:"grade" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Day       string `json:"day" validate:"required"`
	Time      string `json:"time" validate:"required"`
	// IdempotencyKey is read from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// UpdateAssignmentRequest patches an assignment; nil fields are left untouched.
type UpdateAssignmentRequest struct {
	TeacherID *string `json:"teacherId"`
	ClassID   *string `json:"classId"`
	Section   *string `json:"section"`
	Grade     *string `json:"grade"`
	Subject   *string `json:"subject"`
	Day       *string `json:"day"`
	Time      *string `json:"time"`
}

// DeleteByKeyRequest addresses assignments by composite key instead of id.
type DeleteByKeyRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Section string `json:"section" validate:"required"`
	Subject string `json:"subject" validate:"required"`
}

// ListAssignmentsQuery captures list filters from the query string.
type ListAssignmentsQuery struct {
	TeacherID string `form:"teacherId"`
	ClassID   string `form:"classId"`
	Day       string `form:"day"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// AssignmentServiceConfig tunes timeouts, paging and replay protection.
type AssignmentServiceConfig struct {
	OperationTimeout time.Duration
	DefaultPageSize  int
	MaxPageSize      int
	IdempotencyTTL   time.Duration
}

// idempotencyReceipt is what a replayed create needs to find its original result.
type idempotencyReceipt struct {
	AssignmentID string `json:"assignmentId"`
	Fingerprint  string `json:"fingerprint"`
}

// TeacherAssignmentService owns assignment writes and keeps every teacher free
// of double bookings.
type TeacherAssignmentService struct {
	store     assignmentStore
	teachers  teacherDirectory
	classes   classDirectory
	locker    lock.Locker
	cache     idempotencyCache
	metrics   *MetricsService
	cfg       AssignmentServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherAssignmentService creates a service instance.
func NewTeacherAssignmentService(
	store assignmentStore,
	teachers teacherDirectory,
	classes classDirectory,
	locker lock.Locker,
	cache idempotencyCache,
	metrics *MetricsService,
	cfg AssignmentServiceConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeacherAssignmentService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(jsonFieldName)
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	return &TeacherAssignmentService{
		store:     store,
		teachers:  teachers,
		classes:   classes,
		locker:    locker,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Create validates, conflict-checks and stores a new assignment.
func (s *TeacherAssignmentService) Create(ctx context.Context, caller models.Caller, req CreateAssignmentRequest) (result *models.TeacherAssignment, err error) {
	defer s.record("create", &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	candidate, err := s.prepareCandidate(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	release, err := s.lockTeachers(ctx, candidate.TeacherID)
	if err != nil {
		return nil, err
	}
	defer release()

	receiptKey := s.receiptKey(caller, req.IdempotencyKey)
	if receiptKey != "" {
		replayed, err := s.replay(ctx, receiptKey, fingerprint(candidate))
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	existing, err := s.store.ListByTeacher(ctx, candidate.TeacherID, false)
	if err != nil {
		return nil, s.storageError(ctx, err, "failed to load teacher assignments")
	}
	if conflict, found := DetectConflict(candidate.Slot(), existing, ""); found {
		return nil, s.teacherConflict(ctx, *conflict)
	}

	if err := s.store.Create(ctx, candidate); err != nil {
		return nil, s.writeError(ctx, err, candidate, "failed to create assignment")
	}

	if receiptKey != "" {
		receipt := idempotencyReceipt{AssignmentID: candidate.ID, Fingerprint: fingerprint(candidate)}
		if err := s.cache.Set(ctx, receiptKey, receipt, s.cfg.IdempotencyTTL); err != nil {
			s.log(ctx).Warn("failed to store idempotency receipt", zap.String("assignment_id", candidate.ID), zap.Error(err))
		}
	}

	s.log(ctx).Info("assignment created",
		zap.String("assignment_id", candidate.ID),
		zap.String("teacher_id", candidate.TeacherID),
		zap.String("slot", candidate.Slot().String()),
		zap.String("caller", caller.UserID),
	)
	return candidate, nil
}

// prepareCandidate runs every check that does not need the teacher lock.
func (s *TeacherAssignmentService) prepareCandidate(ctx context.Context, caller models.Caller, req CreateAssignmentRequest) (*models.TeacherAssignment, error) {
	candidate, err := s.buildCandidate(caller, req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTeacher(ctx, candidate.TeacherID); err != nil {
		return nil, err
	}
	if err := s.ensureClass(ctx, candidate.ClassID); err != nil {
		return nil, err
	}
	return candidate, nil
}

// buildCandidate validates the payload and normalises its slot.
func (s *TeacherAssignmentService) buildCandidate(caller models.Caller, req CreateAssignmentRequest) (*models.TeacherAssignment, error) {
	req = trimCreateRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}

	slot, err := models.NormalizeSlot(req.Day, req.Time)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	candidate := &models.TeacherAssignment{
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		Section:   req.Section,
		Grade:     req.Grade,
		Subject:   req.Subject,
		CreatedBy: caller.UserID,
		UpdatedBy: caller.UserID,
	}
	candidate.SetSlot(slot)
	return candidate, nil
}

// Update applies a patch, re-running validation and conflict checks while
// ignoring the record's own slot.
func (s *TeacherAssignmentService) Update(ctx context.Context, caller models.Caller, id string, req UpdateAssignmentRequest) (result *models.TeacherAssignment, err error) {
	defer s.record("update", &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := validatePatch(req); err != nil {
		return nil, err
	}

	for {
		current, err := s.loadActive(ctx, id)
		if err != nil {
			return nil, err
		}
		next, err := s.applyPatch(ctx, *current, req)
		if err != nil {
			return nil, err
		}

		release, err := s.lockTeachers(ctx, current.TeacherID, next.TeacherID)
		if err != nil {
			return nil, err
		}

		fresh, err := s.loadActive(ctx, id)
		if err != nil {
			release()
			return nil, err
		}
		if fresh.TeacherID != current.TeacherID {
			// Owner moved while waiting; retry with the new teacher locked.
			release()
			continue
		}
		next, err = s.applyPatch(ctx, *fresh, req)
		if err != nil {
			release()
			return nil, err
		}

		updated, commitErr := s.commitUpdate(ctx, caller, next)
		release()
		return updated, commitErr
	}
}

func (s *TeacherAssignmentService) commitUpdate(ctx context.Context, caller models.Caller, next models.TeacherAssignment) (*models.TeacherAssignment, error) {
	existing, err := s.store.ListByTeacher(ctx, next.TeacherID, false)
	if err != nil {
		return nil, s.storageError(ctx, err, "failed to load teacher assignments")
	}
	if conflict, found := DetectConflict(next.Slot(), existing, next.ID); found {
		return nil, s.teacherConflict(ctx, *conflict)
	}

	next.UpdatedBy = caller.UserID
	if err := s.store.Update(ctx, &next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, s.writeError(ctx, err, &next, "failed to update assignment")
	}

	s.log(ctx).Info("assignment updated",
		zap.String("assignment_id", next.ID),
		zap.String("teacher_id", next.TeacherID),
		zap.String("slot", next.Slot().String()),
		zap.String("caller", caller.UserID),
	)
	return &next, nil
}

func (s *TeacherAssignmentService) applyPatch(ctx context.Context, current models.TeacherAssignment, req UpdateAssignmentRequest) (models.TeacherAssignment, error) {
	next := current
	if req.TeacherID != nil && strings.TrimSpace(*req.TeacherID) != current.TeacherID {
		next.TeacherID = strings.TrimSpace(*req.TeacherID)
		if err := s.ensureTeacher(ctx, next.TeacherID); err != nil {
			return next, err
		}
	}
	if req.ClassID != nil && strings.TrimSpace(*req.ClassID) != current.ClassID {
		next.ClassID = strings.TrimSpace(*req.ClassID)
		if err := s.ensureClass(ctx, next.ClassID); err != nil {
			return next, err
		}
	}
	if req.Section != nil {
		next.Section = strings.TrimSpace(*req.Section)
	}
	if req.Grade != nil {
		next.Grade = strings.TrimSpace(*req.Grade)
	}
	if req.Subject != nil {
		next.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Day != nil || req.Time != nil {
		day, clock := string(current.Day), current.Time
		if req.Day != nil {
			day = *req.Day
		}
		if req.Time != nil {
			clock = *req.Time
		}
		slot, err := models.NormalizeSlot(day, clock)
		if err != nil {
			return next, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		next.SetSlot(slot)
	}
	return next, nil
}

// Delete soft-deletes an assignment by id.
func (s *TeacherAssignmentService) Delete(ctx context.Context, caller models.Caller, id string) (err error) {
	defer s.record("delete", &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.loadActive(ctx, id)
	if err != nil {
		return err
	}

	release, err := s.lockTeachers(ctx, current.TeacherID)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.loadActive(ctx, id); err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return s.storageError(ctx, err, "failed to delete assignment")
	}

	s.log(ctx).Info("assignment deleted",
		zap.String("assignment_id", id),
		zap.String("teacher_id", current.TeacherID),
		zap.String("caller", caller.UserID),
	)
	return nil
}

// DeleteByKey soft-deletes every active assignment of teacherID matching the
// class, section and subject. It returns the removed ids.
func (s *TeacherAssignmentService) DeleteByKey(ctx context.Context, caller models.Caller, teacherID string, req DeleteByKeyRequest) (ids []string, err error) {
	defer s.record("delete_by_key", &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req = DeleteByKeyRequest{
		ClassID: strings.TrimSpace(req.ClassID),
		Section: strings.TrimSpace(req.Section),
		Subject: strings.TrimSpace(req.Subject),
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject assignment payload")
	}
	teacherID = strings.TrimSpace(teacherID)
	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	release, err := s.lockTeachers(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	defer release()

	key := models.AssignmentKey{TeacherID: teacherID, ClassID: req.ClassID, Section: req.Section, Subject: req.Subject}
	ids, err = s.store.SoftDeleteByKey(ctx, key, caller.UserID)
	if err != nil {
		return nil, s.storageError(ctx, err, "failed to delete assignments")
	}
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}

	s.log(ctx).Info("assignments deleted by key",
		zap.String("teacher_id", teacherID),
		zap.String("class_id", req.ClassID),
		zap.String("section", req.Section),
		zap.String("subject", req.Subject),
		zap.Int("count", len(ids)),
		zap.String("caller", caller.UserID),
	)
	return ids, nil
}

// Get returns an assignment by id, including soft-deleted ones.
func (s *TeacherAssignmentService) Get(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, s.storageError(ctx, err, "failed to load assignment")
	}
	return assignment, nil
}

// List returns active assignments with pagination metadata.
func (s *TeacherAssignmentService) List(ctx context.Context, query ListAssignmentsQuery) ([]models.TeacherAssignment, *models.Pagination, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := models.AssignmentFilter{
		TeacherID: strings.TrimSpace(query.TeacherID),
		ClassID:   strings.TrimSpace(query.ClassID),
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if strings.TrimSpace(query.Day) != "" {
		day, err := models.ParseWeekday(query.Day)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		filter.Day = day
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.DefaultPageSize
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	assignments, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, s.storageError(ctx, err, "failed to list assignments")
	}
	if assignments == nil {
		assignments = []models.TeacherAssignment{}
	}
	return assignments, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListByTeacher returns a teacher's active assignments ordered by day and time.
func (s *TeacherAssignmentService) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListByTeacher(ctx, teacherID, false)
	if err != nil {
		return nil, s.storageError(ctx, err, "failed to list teacher assignments")
	}
	return nonNil(assignments), nil
}

// ListByClass returns a class's active assignments ordered by day and time.
func (s *TeacherAssignmentService) ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.ensureClass(ctx, classID); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListByClass(ctx, classID)
	if err != nil {
		return nil, s.storageError(ctx, err, "failed to list class assignments")
	}
	return nonNil(assignments), nil
}

// TeacherSchedule returns a teacher's active assignments for one weekday.
func (s *TeacherAssignmentService) TeacherSchedule(ctx context.Context, teacherID, day string) ([]models.TeacherAssignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	weekday, err := models.ParseWeekday(day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListByDay(ctx, teacherID, weekday)
	if err != nil {
		return nil, s.storageError(ctx, err, "failed to load teacher schedule")
	}
	return nonNil(assignments), nil
}

func (s *TeacherAssignmentService) loadActive(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	assignment, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, s.storageError(ctx, err, "failed to load assignment")
	}
	if !assignment.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return assignment, nil
}

func (s *TeacherAssignmentService) ensureTeacher(ctx context.Context, teacherID string) error {
	if strings.TrimSpace(teacherID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return s.storageError(ctx, err, "failed to load teacher")
	}
	return nil
}

func (s *TeacherAssignmentService) ensureClass(ctx context.Context, classID string) error {
	if strings.TrimSpace(classID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return s.storageError(ctx, err, "failed to load class")
	}
	return nil
}

func (s *TeacherAssignmentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}

// lockTeachers serialises writers for the given teachers.
func (s *TeacherAssignmentService) lockTeachers(ctx context.Context, teacherIDs ...string) (func(), error) {
	keys := make([]string, 0, len(teacherIDs))
	for _, id := range teacherIDs {
		keys = append(keys, "teacher:"+id)
	}
	start := time.Now()
	release, err := s.locker.Acquire(ctx, keys...)
	s.metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) || ctx.Err() != nil {
			s.log(ctx).Warn("teacher lock unavailable", zap.Strings("keys", keys), zap.Error(err))
		}
		return nil, s.storageError(ctx, err, "failed to acquire teacher lock")
	}
	return release, nil
}

func (s *TeacherAssignmentService) receiptKey(caller models.Caller, key string) string {
	key = strings.TrimSpace(key)
	if key == "" || s.cache == nil || !s.cache.Enabled() {
		return ""
	}
	return fmt.Sprintf("idempotency:assignments:%s:%s", caller.UserID, key)
}

// replay returns the assignment created by an earlier request with the same
// idempotency key. A nil result with nil error means no usable receipt exists.
func (s *TeacherAssignmentService) replay(ctx context.Context, key, want string) (*models.TeacherAssignment, error) {
	var receipt idempotencyReceipt
	hit, err := s.cache.Get(ctx, key, &receipt)
	if err != nil || !hit {
		// A broken cache degrades to a plain create.
		return nil, nil
	}
	if receipt.Fingerprint != want {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Idempotency-Key was already used for a different assignment")
	}
	original, err := s.store.FindByID(ctx, receipt.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.cache.Invalidate(ctx, key)
			return nil, nil
		}
		return nil, s.storageError(ctx, err, "failed to load assignment")
	}
	s.metrics.RecordAssignmentOperation("create_replay", OutcomeReplayed)
	s.log(ctx).Info("assignment create replayed", zap.String("assignment_id", original.ID))
	return original, nil
}

func (s *TeacherAssignmentService) teacherConflict(ctx context.Context, existing models.TeacherAssignment) error {
	message := fmt.Sprintf("Time is already assigned to this teacher (%s)", existing.Slot())
	s.log(ctx).Info("assignment conflict",
		zap.String("teacher_id", existing.TeacherID),
		zap.String("slot", existing.Slot().String()),
		zap.String("existing_assignment_id", existing.ID),
	)
	return conflictError(message, models.NewAssignmentConflict(existing))
}

func conflictError(message string, conflict models.AssignmentConflict) error {
	detail := &models.AssignmentConflictError{Message: message, Conflict: conflict}
	return appErrors.WithDetails(
		appErrors.Wrap(detail, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message),
		conflict,
	)
}

// writeError maps store failures on insert or update.
func (s *TeacherAssignmentService) writeError(ctx context.Context, err error, candidate *models.TeacherAssignment, message string) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		// Another writer bypassed the lock; the storage constraint caught it.
		slot := candidate.Slot()
		return conflictError(
			fmt.Sprintf("Time is already assigned to this teacher (%s)", slot),
			models.AssignmentConflict{TeacherID: candidate.TeacherID, Day: slot.Day, Time: slot.Label()},
		)
	case errors.Is(err, models.ErrIncompleteAssignment):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return s.storageError(ctx, err, message)
}

// storageError hides infrastructure details. Expired or cancelled contexts
// surface as a retryable timeout.
func (s *TeacherAssignmentService) storageError(ctx context.Context, err error, message string) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, lock.ErrLockTimeout) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	}
	s.log(ctx).Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *TeacherAssignmentService) record(operation string, err *error) {
	s.metrics.RecordAssignmentOperation(operation, outcomeOf(*err))
}

func (s *TeacherAssignmentService) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch appErrors.FromError(err).Code {
	case appErrors.ErrConflict.Code:
		return OutcomeConflict
	case appErrors.ErrNotFound.Code:
		return OutcomeNotFound
	case appErrors.ErrValidation.Code:
		return OutcomeInvalid
	case appErrors.ErrTimeout.Code:
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("%s: missing %s", message, strings.Join(fields, ", ")))
		return appErrors.WithDetails(wrapped, map[string][]string{"fields": fields})
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func validatePatch(req UpdateAssignmentRequest) error {
	var blank []string
	for name, value := range map[string]*string{
		"teacherId": req.TeacherID,
		"classId":   req.ClassID,
		"section":   req.Section,
		"grade":     req.Grade,
		"subject":   req.Subject,
		"day":       req.Day,
		"time":      req.Time,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			blank = append(blank, name)
		}
	}
	if len(blank) == 0 {
		return nil
	}
	sort.Strings(blank)
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload: empty "+strings.Join(blank, ", ")),
		map[string][]string{"fields": blank},
	)
}

func trimCreateRequest(req CreateAssignmentRequest) CreateAssignmentRequest {
	req.TeacherID = strings.TrimSpace(req.TeacherID)
	req.ClassID = strings.TrimSpace(req.ClassID)
	req.Section = strings.TrimSpace(req.Section)
	req.Grade = strings.TrimSpace(req.Grade)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Day = strings.TrimSpace(req.Day)
	req.Time = strings.TrimSpace(req.Time)
	return req
}

// fingerprint identifies the normalised content of a create request.
func fingerprint(a *models.TeacherAssignment) string {
	return strings.Join([]string{a.TeacherID, a.ClassID, a.Section, a.Grade, a.Subject, a.Slot().String()}, "|")
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func nonNil(assignments []models.TeacherAssignment) []models.TeacherAssignment {
	if assignments == nil {
		return []models.TeacherAssignment{}
	}
	return assignments
}
