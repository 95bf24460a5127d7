package logger

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey  contextKey = "logger"
	tenantKey  contextKey = "tenant_id"
	runKey     contextKey = "run_id"
	commandKey contextKey = "command"
)

// WithContext attaches a logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// WithTenant records the tenant an operation runs for
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// WithRun records the operator command and a run id correlating its log lines
func WithRun(ctx context.Context, command, runID string) context.Context {
	ctx = context.WithValue(ctx, commandKey, command)
	return context.WithValue(ctx, runKey, runID)
}

// TenantID returns the tenant recorded by WithTenant
func TenantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantKey).(uuid.UUID)
	return id, ok
}

// RunID returns the run id recorded by WithRun
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runKey).(string)
	return id
}

// L returns the context's logger enriched with the command, run id, tenant
// and the active span's trace and span ids.
//
// Usage: logger.L(ctx).Info("Depreciation posted", zap.Int("lines", n))
func L(ctx context.Context) *zap.Logger {
	return enrich(ctx, FromContext(ctx))
}

func enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 5)
	if command, ok := ctx.Value(commandKey).(string); ok && command != "" {
		fields = append(fields, zap.String("command", command))
	}
	if runID := RunID(ctx); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if tenantID, ok := TenantID(ctx); ok {
		fields = append(fields, zap.String("tenant_id", tenantID.String()))
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fields = append(fields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
