package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scheduler/internal/service"
)

// unmatchedRoute labels requests that hit no registered route, so scans of
// random paths cannot grow the label set.
const unmatchedRoute = "unmatched"

// Metrics records latency and status per route template for the scheduler API.
// Requests to the skipped routes, typically /metrics and the health checks,
// are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}

	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := skipped[route]; ok && route != "" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
