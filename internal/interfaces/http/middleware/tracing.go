package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erp/purchasing/internal/infrastructure/logger"
)

// Tracing starts a server span per request, continuing any trace the
// caller propagated in traceparent
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// SpanAnnotator tags the request span with the request id and the list
// total. It must sit after RequestID and Tracing in the chain.
func SpanAnnotator() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := c.GetString(logger.RequestIDField); id != "" {
				span.SetAttributes(attribute.String(logger.RequestIDField, id))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		if total := c.Writer.Header().Get("X-Total-Count"); total != "" {
			span.SetAttributes(attribute.String("purchasing.total_count", total))
		}
		if c.Writer.Status() >= http.StatusBadRequest && len(c.Errors) > 0 {
			span.SetStatus(codes.Error, c.Errors.Last().Error())
		}
	}
}
