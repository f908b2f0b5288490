package logger

import (
	"context"

	"go.uber.org/zap"
)

// RequestIDField is the log field and gin.Context key carrying the
// correlation id of one backend request
const RequestIDField = "request_id"

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestIDCtxKey
)

// Into stores l on ctx
func Into(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

// From returns the logger stored on ctx, or a no-op logger
func From(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID tags ctx and l with a correlation id. The gateway forwards
// the id as X-Request-ID; the SQL log repeats it.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	tagged := OrNop(l).With(zap.String(RequestIDField, requestID))
	ctx = context.WithValue(ctx, requestIDCtxKey, requestID)
	return Into(ctx, tagged), tagged
}

// RequestID returns the correlation id on ctx, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}
