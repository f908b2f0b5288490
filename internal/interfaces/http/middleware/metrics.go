package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/purchasing/internal/infrastructure/telemetry"
)

// HTTPMetrics records request count and latency per method, route template
// and status code. Requests matching no route share one label.
// A nil metrics set records nothing.
func HTTPMetrics(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.HTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
