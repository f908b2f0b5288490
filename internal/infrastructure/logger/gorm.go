package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogger routes GORM's logging into zap. Statements run under a request
// context are logged with that request's logger.
type SQLLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

var _ gormlogger.Interface = (*SQLLogger)(nil)

// NewSQLLogger creates a GORM logger. slow == 0 disables slow query warnings.
func NewSQLLogger(l *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *SQLLogger {
	return &SQLLogger{base: OrNop(l).Named("sql"), level: level, slow: slow}
}

// ParseGormLevel maps a config level onto GORM's levels; unknown means warn
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (s *SQLLogger) loggerFor(ctx context.Context) *zap.Logger {
	if RequestID(ctx) != "" {
		return From(ctx).Named("sql")
	}
	return s.base
}

// LogMode implements gormlogger.Interface
func (s *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *s
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (s *SQLLogger) Info(ctx context.Context, msg string, args ...any) {
	if s.level >= gormlogger.Info {
		s.loggerFor(ctx).Sugar().Infof(msg, args...)
	}
}

// Warn implements gormlogger.Interface
func (s *SQLLogger) Warn(ctx context.Context, msg string, args ...any) {
	if s.level >= gormlogger.Warn {
		s.loggerFor(ctx).Sugar().Warnf(msg, args...)
	}
}

// Error implements gormlogger.Interface
func (s *SQLLogger) Error(ctx context.Context, msg string, args ...any) {
	if s.level >= gormlogger.Error {
		s.loggerFor(ctx).Sugar().Errorf(msg, args...)
	}
}

// Trace implements gormlogger.Interface. A missing row is an ordinary
// outcome of an id lookup, not an error.
func (s *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if s.level == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	isSlow := s.slow > 0 && elapsed > s.slow

	if !(failed && s.level >= gormlogger.Error) && !(isSlow && s.level >= gormlogger.Warn) && s.level < gormlogger.Info {
		return
	}

	query, rows := fc()
	fields := []zap.Field{
		zap.String("statement", statementKind(query)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", query),
	}
	l := s.loggerFor(ctx)
	switch {
	case failed && s.level >= gormlogger.Error:
		l.Error("SQL Error", append(fields, zap.Error(err))...)
	case isSlow && s.level >= gormlogger.Warn:
		l.Warn("Slow SQL", append(fields, zap.Duration("threshold", s.slow))...)
	default:
		l.Debug("SQL", fields...)
	}
}

// statementKind returns the leading keyword of a statement, e.g. SELECT
func statementKind(query string) string {
	query = strings.TrimSpace(query)
	if i := strings.IndexAny(query, " \n\t"); i > 0 {
		query = query[:i]
	}
	return strings.ToUpper(query)
}
