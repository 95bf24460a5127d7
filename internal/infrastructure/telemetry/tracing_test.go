package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx, span := telemetry.StartServiceSpan(context.Background(), "posting", "post_journal",
		attribute.String("tenant_id", "t-1"))
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
	telemetry.RecordError(span, errors.New("imbalanced"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "posting.post_journal", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestTraceIDs_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
	telemetry.RecordError(nil, errors.New("ignored"))
}

func TestSetup_Disabled(t *testing.T) {
	providers, err := telemetry.Setup(context.Background(), telemetry.Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, providers.IsEnabled())
	assert.NotNil(t, providers.Meter("test"))

	base := zap.NewNop()
	assert.Same(t, base, providers.BridgeLogger(base, zapcore.InfoLevel))
	assert.NoError(t, providers.Shutdown(context.Background()))
}
