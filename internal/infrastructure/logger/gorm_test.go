package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewGormLogger(t *testing.T) {
	gormLog, _ := newObservedGorm(gormlogger.Warn, WithSlowThreshold(time.Second))

	assert.Equal(t, gormlogger.Warn, gormLog.logLevel)
	assert.Equal(t, time.Second, gormLog.slowThreshold)
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGorm(gormlogger.Info)
	changed := gormLog.LogMode(gormlogger.Error)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	clone, ok := changed.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, clone.logLevel)
}

func TestGormLogger_Messages(t *testing.T) {
	gormLog, recorded := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	gormLog.Info(ctx, "info %d", 1)
	gormLog.Warn(ctx, "warn %d", 2)
	gormLog.Error(ctx, "error %d", 3)

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn 2", entries[0].Message)
	assert.Equal(t, "error 3", entries[1].Message)
}

func TestGormLogger_Trace(t *testing.T) {
	failure := errors.New("duplicate key")

	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		elapsed   time.Duration
		err       error
		wantCount int
		wantMsg   string
		wantLevel zapcore.Level
	}{
		{"error is logged", gormlogger.Error, 0, failure, 1, "SQL error", zapcore.ErrorLevel},
		{"record not found is ignored", gormlogger.Info, 0, gormlogger.ErrRecordNotFound, 1, "SQL", zapcore.DebugLevel},
		{"slow query warns", gormlogger.Warn, time.Second, nil, 1, "Slow SQL", zapcore.WarnLevel},
		{"fast query hidden at warn", gormlogger.Warn, 0, nil, 0, "", zapcore.InfoLevel},
		{"fast query logged at info", gormlogger.Info, 0, nil, 1, "SQL", zapcore.DebugLevel},
		{"silent logs nothing", gormlogger.Silent, 0, failure, 0, "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormLog, recorded := newObservedGorm(tt.level, WithSlowThreshold(100*time.Millisecond))

			gormLog.Trace(context.Background(), time.Now().Add(-tt.elapsed), sqlFunc("SELECT 1", 1), tt.err)

			require.Equal(t, tt.wantCount, recorded.Len())
			if tt.wantCount > 0 {
				entry := recorded.All()[0]
				assert.Equal(t, tt.wantMsg, entry.Message)
				assert.Equal(t, tt.wantLevel, entry.Level)
				assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
			}
		})
	}
}

func TestGormLogger_TraceCarriesRunFields(t *testing.T) {
	gormLog, recorded := newObservedGorm(gormlogger.Info)
	tenantID := uuid.New()
	ctx := WithTenant(WithRun(context.Background(), "close-period", "run-7"), tenantID)

	gormLog.Trace(ctx, time.Now(), sqlFunc("UPDATE periods SET status = 'CLOSED'", 1), nil)

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "run-7", fields["run_id"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
	assert.Equal(t, "close-period", fields["command"])
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
}
