package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-scheduler/internal/middleware"
	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	"github.com/noah-isme/sma-adp-scheduler/internal/service"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
)

type assignmentServiceMock struct {
	createReq    service.CreateAssignmentRequest
	createCaller models.Caller
	createResp   *models.TeacherAssignment
	createErr    error

	updateID  string
	updateReq service.UpdateAssignmentRequest
	updateErr error

	deleteID  string
	deleteErr error

	getResp *models.TeacherAssignment
	getErr  error

	listQuery service.ListAssignmentsQuery
	listResp  []models.TeacherAssignment
	listPage  *models.Pagination

	scheduleTeacher string
	scheduleDay     string
	scheduleErr     error
}

func (m *assignmentServiceMock) Create(ctx context.Context, caller models.Caller, req service.CreateAssignmentRequest) (*models.TeacherAssignment, error) {
	m.createCaller = caller
	m.createReq = req
	return m.createResp, m.createErr
}

func (m *assignmentServiceMock) Update(ctx context.Context, caller models.Caller, id string, req service.UpdateAssignmentRequest) (*models.TeacherAssignment, error) {
	m.updateID = id
	m.updateReq = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.TeacherAssignment{ID: id}, nil
}

func (m *assignmentServiceMock) Delete(ctx context.Context, caller models.Caller, id string) error {
	m.deleteID = id
	return m.deleteErr
}

func (m *assignmentServiceMock) Get(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	return m.getResp, m.getErr
}

func (m *assignmentServiceMock) List(ctx context.Context, query service.ListAssignmentsQuery) ([]models.TeacherAssignment, *models.Pagination, error) {
	m.listQuery = query
	return m.listResp, m.listPage, nil
}

func (m *assignmentServiceMock) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignment, error) {
	return []models.TeacherAssignment{{ID: "a-1", TeacherID: teacherID}}, nil
}

func (m *assignmentServiceMock) ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignment, error) {
	return []models.TeacherAssignment{}, nil
}

func (m *assignmentServiceMock) TeacherSchedule(ctx context.Context, teacherID, day string) ([]models.TeacherAssignment, error) {
	m.scheduleTeacher = teacherID
	m.scheduleDay = day
	return []models.TeacherAssignment{}, m.scheduleErr
}

type statisticsServiceMock struct {
	overview *models.AssignmentOverview
}

func (m statisticsServiceMock) Overview(ctx context.Context) (*models.AssignmentOverview, error) {
	return m.overview, nil
}

var testAdmin = models.Caller{UserID: "admin-1", Role: models.RoleAdmin}

func newAssignmentRouter(svc *assignmentServiceMock, stats statisticsServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/admin", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, testAdmin)
		c.Next()
	})
	NewAssignmentHandler(svc, stats).RegisterRoutes(admin)
	return r
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Count      *int            `json:"count"`
	Total      *int            `json:"total"`
	TotalPages *int            `json:"totalPages"`
}

func perform(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestAssignmentHandlerCreate(t *testing.T) {
	svc := &assignmentServiceMock{createResp: &models.TeacherAssignment{ID: "a-1", TeacherID: "teacher-1"}}
	router := newAssignmentRouter(svc, statisticsServiceMock{})

	body := `{"teacherId":"teacher-1","classId":"class-10","section":"A","grade":"10","subject":"Mathematics","day":"Monday","time":"10:00 AM"}`
	w, env := perform(t, router, http.MethodPost, "/admin/assignments", body, map[string]string{IdempotencyHeader: "  retry-1 "})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "retry-1", svc.createReq.IdempotencyKey)
	assert.Equal(t, "Mathematics", svc.createReq.Subject)
	assert.Equal(t, testAdmin, svc.createCaller)
}

func TestAssignmentHandlerCreateMalformedBody(t *testing.T) {
	svc := &assignmentServiceMock{}
	router := newAssignmentRouter(svc, statisticsServiceMock{})

	w, env := perform(t, router, http.MethodPost, "/admin/assignments", `{"teacherId":`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Code)
	assert.Empty(t, svc.createReq.TeacherID)
}

func TestAssignmentHandlerCreateConflict(t *testing.T) {
	svc := &assignmentServiceMock{createErr: appErrors.Clone(appErrors.ErrConflict, "Time is already assigned to this teacher (Monday 10:00 AM)")}
	router := newAssignmentRouter(svc, statisticsServiceMock{})

	w, env := perform(t, router, http.MethodPost, "/admin/assignments", `{"teacherId":"teacher-1"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Monday 10:00 AM")
}

func TestAssignmentHandlerListBindsQuery(t *testing.T) {
	svc := &assignmentServiceMock{
		listResp: []models.TeacherAssignment{{ID: "a-1"}, {ID: "a-2"}},
		listPage: models.NewPagination(2, 2, 5),
	}
	router := newAssignmentRouter(svc, statisticsServiceMock{})

	w, env := perform(t, router, http.MethodGet, "/admin/assignments?teacherId=teacher-1&day=monday&page=2&pageSize=2", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ListAssignmentsQuery{TeacherID: "teacher-1", Day: "monday", Page: 2, PageSize: 2}, svc.listQuery)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	require.NotNil(t, env.Total)
	assert.Equal(t, 5, *env.Total)
	assert.Equal(t, 3, *env.TotalPages)
}

func TestAssignmentHandlerListRejectsBadPage(t *testing.T) {
	router := newAssignmentRouter(&assignmentServiceMock{}, statisticsServiceMock{})

	w, _ := perform(t, router, http.MethodGet, "/admin/assignments?page=two", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerGetNotFound(t *testing.T) {
	svc := &assignmentServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "assignment not found")}
	router := newAssignmentRouter(svc, statisticsServiceMock{})

	w, env := perform(t, router, http.MethodGet, "/admin/assignments/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "assignment not found", env.Message)
}

func TestAssignmentHandlerUpdateAndDelete(t *testing.T) {
	svc := &assignmentServiceMock{}
	router := newAssignmentRouter(svc, statisticsServiceMock{})

	w, _ := perform(t, router, http.MethodPut, "/admin/assignments/a-9", `{"day":"Tuesday"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a-9", svc.updateID)
	require.NotNil(t, svc.updateReq.Day)
	assert.Equal(t, "Tuesday", *svc.updateReq.Day)
	assert.Nil(t, svc.updateReq.Time)

	w, env := perform(t, router, http.MethodDelete, "/admin/assignments/a-9", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a-9", svc.deleteID)
	assert.Equal(t, "Assignment deleted successfully", env.Message)
}

func TestAssignmentHandlerStaticRoutesWinOverID(t *testing.T) {
	svc := &assignmentServiceMock{}
	stats := statisticsServiceMock{overview: &models.AssignmentOverview{TotalAssignments: 4, TotalTeachers: 3}}
	router := newAssignmentRouter(svc, stats)

	w, env := perform(t, router, http.MethodGet, "/admin/assignments/statistics/overview", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview models.AssignmentOverview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, 3, overview.TotalTeachers)

	w, env = perform(t, router, http.MethodGet, "/admin/assignments/teacher/teacher-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *env.Count)

	w, env = perform(t, router, http.MethodGet, "/admin/assignments/class/class-10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, *env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = perform(t, router, http.MethodGet, "/admin/assignments/teacher/teacher-1/schedule/Friday", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher-1", svc.scheduleTeacher)
	assert.Equal(t, "Friday", svc.scheduleDay)
}

func TestAssignmentHandlerRequiresCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &assignmentServiceMock{}
	h := NewAssignmentHandler(svc, statisticsServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/assignments/a-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	h.Delete(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.deleteID)
}
