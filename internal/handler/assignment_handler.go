package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	"github.com/noah-isme/sma-adp-scheduler/internal/service"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/response"
)

// IdempotencyHeader carries the optional replay key for create requests.
const IdempotencyHeader = "Idempotency-Key"

type assignmentService interface {
	Create(ctx context.Context, caller models.Caller, req service.CreateAssignmentRequest) (*models.TeacherAssignment, error)
	Update(ctx context.Context, caller models.Caller, id string, req service.UpdateAssignmentRequest) (*models.TeacherAssignment, error)
	Delete(ctx context.Context, caller models.Caller, id string) error
	Get(ctx context.Context, id string) (*models.TeacherAssignment, error)
	List(ctx context.Context, query service.ListAssignmentsQuery) ([]models.TeacherAssignment, *models.Pagination, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error)
	ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignment, error)
	TeacherSchedule(ctx context.Context, teacherID, day string) ([]models.TeacherAssignment, error)
}

type statisticsService interface {
	Overview(ctx context.Context) (*models.AssignmentOverview, error)
}

// AssignmentHandler exposes the administrative assignment routes.
type AssignmentHandler struct {
	assignments assignmentService
	statistics  statisticsService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService, statistics statisticsService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, statistics: statistics}
}

// Create godoc
// @Summary Create teacher assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay key for safe retries"
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyHeader))

	assignment, err := h.assignments.Create(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// List godoc
// @Summary List active assignments
// @Tags Assignments
// @Produce json
// @Param teacherId query string false "Teacher ID"
// @Param classId query string false "Class ID"
// @Param day query string false "Weekday"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	var query service.ListAssignmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	assignments, pagination, err := h.assignments.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, assignments, len(assignments), pagination)
}

// Get godoc
// @Summary Get assignment detail
// @Description Soft-deleted assignments remain readable by id.
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.assignments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.Update(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Soft-delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	if err := h.assignments.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Assignment deleted successfully", nil)
}

// ListByTeacher godoc
// @Summary List a teacher's active assignments
// @Tags Assignments
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /admin/assignments/teacher/{teacherId} [get]
func (h *AssignmentHandler) ListByTeacher(c *gin.Context) {
	assignments, err := h.assignments.ListByTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, assignments, len(assignments), nil)
}

// ListByClass godoc
// @Summary List a class's active assignments
// @Tags Assignments
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /admin/assignments/class/{classId} [get]
func (h *AssignmentHandler) ListByClass(c *gin.Context) {
	assignments, err := h.assignments.ListByClass(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, assignments, len(assignments), nil)
}

// TeacherSchedule godoc
// @Summary A teacher's schedule for one weekday
// @Tags Assignments
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param day path string true "Weekday"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/assignments/teacher/{teacherId}/schedule/{day} [get]
func (h *AssignmentHandler) TeacherSchedule(c *gin.Context) {
	assignments, err := h.assignments.TeacherSchedule(c.Request.Context(), c.Param("teacherId"), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, assignments, len(assignments), nil)
}

// Statistics godoc
// @Summary Assignment overview
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/assignments/statistics/overview [get]
func (h *AssignmentHandler) Statistics(c *gin.Context) {
	overview, err := h.statistics.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// RegisterRoutes mounts the assignment routes on an already guarded group.
func (h *AssignmentHandler) RegisterRoutes(group *gin.RouterGroup) {
	assignments := group.Group("/assignments")
	assignments.POST("", h.Create)
	assignments.GET("", h.List)
	assignments.GET("/statistics/overview", h.Statistics)
	assignments.GET("/teacher/:teacherId", h.ListByTeacher)
	assignments.GET("/teacher/:teacherId/schedule/:day", h.TeacherSchedule)
	assignments.GET("/class/:classId", h.ListByClass)
	assignments.GET("/:id", h.Get)
	assignments.PUT("/:id", h.Update)
	assignments.DELETE("/:id", h.Delete)
}
