package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Code       string      `json:"code,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	Retryable  bool        `json:"retryable,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Page       *int        `json:"page,omitempty"`
	PageSize   *int        `json:"pageSize,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	envelope := Envelope{Success: true, Data: data}
	if pagination != nil {
		envelope.Total = intPtr(pagination.TotalCount)
		envelope.Page = intPtr(pagination.Page)
		envelope.PageSize = intPtr(pagination.PageSize)
		envelope.TotalPages = intPtr(pagination.TotalPages)
	}
	write(c, status, envelope)
}

// List sends a collection together with its size.
func List(c *gin.Context, data interface{}, count int, pagination *models.Pagination) {
	envelope := Envelope{Success: true, Data: data, Count: intPtr(count)}
	if pagination != nil {
		envelope.Total = intPtr(pagination.TotalCount)
		envelope.Page = intPtr(pagination.Page)
		envelope.PageSize = intPtr(pagination.PageSize)
		envelope.TotalPages = intPtr(pagination.TotalPages)
	}
	write(c, http.StatusOK, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// CreatedList responds with HTTP 201 and the size of the created collection.
func CreatedList(c *gin.Context, data interface{}, count int) {
	write(c, http.StatusCreated, Envelope{Success: true, Data: data, Count: intPtr(count)})
}

// Message responds with a human readable confirmation and optional count.
func Message(c *gin.Context, status int, message string, count *int) {
	write(c, status, Envelope{Success: true, Message: message, Count: count})
}

// Error sends an error response converting the error to the common structure.
// Wrapped causes are never rendered.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	write(c, appErr.Status, Envelope{
		Success:   false,
		Message:   appErr.Message,
		Code:      appErr.Code,
		Details:   appErr.Details,
		Retryable: appErr.Retryable(),
	})
}

func write(c *gin.Context, status int, envelope Envelope) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, envelope)
}

func intPtr(v int) *int {
	return &v
}
