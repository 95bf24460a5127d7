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

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans (development only)
	SlowQueryThresh time.Duration // default: 200ms
	DBSystem        string        // default: "postgresql"
}

// DefaultDBTracingConfig returns the default database tracing configuration.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs the otelgorm plugin plus slow-query annotation callbacks.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartTimeKey, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		annotateSpan(tx, cfg.SlowQueryThresh)
	}

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("kernel_timing:before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("kernel_timing:before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("kernel_timing:before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("kernel_timing:before_delete", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("kernel_timing:before_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register("kernel_timing:after_create", after) },
		func() error { return cb.Query().After("gorm:query").Register("kernel_timing:after_query", after) },
		func() error { return cb.Update().After("gorm:update").Register("kernel_timing:after_update", after) },
		func() error { return cb.Delete().After("gorm:delete").Register("kernel_timing:after_delete", after) },
		func() error { return cb.Raw().After("gorm:raw").Register("kernel_timing:after_raw", after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	if logger != nil {
		logger.Info("Database tracing enabled",
			zap.Bool("log_full_sql", cfg.LogFullSQL),
			zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
			zap.String("db_system", cfg.DBSystem),
		)
	}
	return nil
}

func annotateSpan(db *gorm.DB, slowThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if started, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(started); elapsed > slowThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
