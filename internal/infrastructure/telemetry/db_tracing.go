package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds settings for GORM query spans
type DBTracingConfig struct {
	Enabled       bool
	DBSystem      string // sqlite, postgresql
	LogFullSQL    bool   // keep bound variables in db.statement
	SlowThreshold time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db, plus callbacks that
// tag each query span with its table, affected rows and slowness
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	after := annotateQuerySpan(cfg.SlowThreshold)
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("tracing:start_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("tracing:start_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("tracing:start_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("tracing:start_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("tracing:start_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("tracing:start_raw", markQueryStart),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("tracing:annotate_create", after),
		cb.Query().After("gorm:query").Before("otel:after:query").Register("tracing:annotate_query", after),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("tracing:annotate_update", after),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("tracing:annotate_delete", after),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("tracing:annotate_row", after),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("tracing:annotate_raw", after),
	)
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_threshold", cfg.SlowThreshold),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func annotateQuerySpan(slow time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok && slow > 0 {
			if elapsed := time.Since(start); elapsed > slow {
				span.SetAttributes(
					attribute.Bool("db.slow_query", true),
					attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
				)
			}
		}
	}
}
