package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/middleware"
	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/response"
)

// callerFromContext renders 401 and reports false when no caller was attached.
func callerFromContext(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Caller{}, false
	}
	return caller, true
}
