package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated models.Caller.
const ContextUserKey = "currentUser"

// Authenticator resolves a bearer token into a caller.
type Authenticator interface {
	Authenticate(token string) (models.Caller, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		caller, err := auth.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, caller)
		c.Next()
	}
}

// CallerFromContext returns the caller stored by JWT.
func CallerFromContext(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return models.Caller{}, false
	}
	caller, ok := value.(models.Caller)
	return caller, ok
}
