package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	"github.com/noah-isme/sma-adp-scheduler/internal/service"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/response"
)

type legacyAssignmentService interface {
	AssignClasses(ctx context.Context, caller models.Caller, teacherID string, req service.AssignClassesRequest) ([]models.TeacherAssignment, error)
	RemoveSubjectAssignment(ctx context.Context, caller models.Caller, teacherID string, req service.RemoveSubjectAssignmentRequest) ([]string, error)
}

// LegacyTeacherHandler keeps the teacher-scoped routes older clients call.
type LegacyTeacherHandler struct {
	legacy legacyAssignmentService
}

// NewLegacyTeacherHandler constructs a LegacyTeacherHandler.
func NewLegacyTeacherHandler(legacy legacyAssignmentService) *LegacyTeacherHandler {
	return &LegacyTeacherHandler{legacy: legacy}
}

// AssignClasses godoc
// @Summary Assign several classes to a teacher at once
// @Description All entries are created or none are.
// @Tags Teachers
// @Accept json
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param payload body service.AssignClassesRequest true "Classes to assign"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/teachers/{teacherId}/assign-classes [post]
func (h *LegacyTeacherHandler) AssignClasses(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req service.AssignClassesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assign classes payload"))
		return
	}

	created, err := h.legacy.AssignClasses(c.Request.Context(), caller, c.Param("teacherId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.CreatedList(c, created, len(created))
}

// RemoveSubjectAssignment godoc
// @Summary Remove assignments by class, section and subject
// @Tags Teachers
// @Accept json
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param payload body service.RemoveSubjectAssignmentRequest true "Assignment key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/teachers/{teacherId}/subject-assignment [delete]
func (h *LegacyTeacherHandler) RemoveSubjectAssignment(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req service.RemoveSubjectAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject assignment payload"))
		return
	}

	removed, err := h.legacy.RemoveSubjectAssignment(c.Request.Context(), caller, c.Param("teacherId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	count := len(removed)
	response.Message(c, http.StatusOK, "Subject assignment removed successfully", &count)
}

// RegisterRoutes mounts the legacy routes on an already guarded group.
func (h *LegacyTeacherHandler) RegisterRoutes(group *gin.RouterGroup) {
	teachers := group.Group("/teachers/:teacherId")
	teachers.POST("/assign-classes", h.AssignClasses)
	teachers.DELETE("/subject-assignment", h.RemoveSubjectAssignment)
}
