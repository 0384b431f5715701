package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/response"
)

// RequireRoles lets the request through only when the caller holds one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[caller.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
