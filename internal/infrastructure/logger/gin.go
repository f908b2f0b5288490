package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ginLoggerKey is where AccessLog leaves the request logger on gin.Context
const ginLoggerKey = "request_logger"

// AccessLog logs one line per backend request. It expects the request id
// under RequestIDField and puts a tagged logger on both the gin context and
// the request context, so repositories called with c.Request.Context() log
// SQL under the same id.
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	l = OrNop(l)
	return func(c *gin.Context) {
		start := time.Now()

		ctx, reqLogger := WithRequestID(c.Request.Context(), l, c.GetString(RequestIDField))
		reqLogger = reqLogger.With(zap.String("method", c.Request.Method))
		ctx = Into(ctx, reqLogger)
		c.Set(ginLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if total := c.Writer.Header().Get("X-Total-Count"); total != "" {
			fields = append(fields, zap.String("total_count", total))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if status >= http.StatusInternalServerError {
			reqLogger.Error("HTTP Request", fields...)
		} else if status >= http.StatusBadRequest {
			reqLogger.Warn("HTTP Request", fields...)
		} else {
			reqLogger.Info("HTTP Request", fields...)
		}
	}
}

// Recover turns a handler panic into a 500 JSON error carrying the request id
func Recover(l *zap.Logger) gin.HandlerFunc {
	l = OrNop(l)
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString(RequestIDField)
			l.Error("Panic recovered",
				zap.String(RequestIDField, requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":      "INTERNAL_ERROR",
				"message":   "internal server error",
				"requestId": requestID,
			})
		}()
		c.Next()
	}
}

// ForRequest returns the logger AccessLog attached to c
func ForRequest(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return From(c.Request.Context())
}
