package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewKernelMetrics_NilMeter(t *testing.T) {
	km, err := telemetry.NewKernelMetrics(nil)

	require.Error(t, err)
	assert.Nil(t, km)
	assert.Equal(t, "NewKernelMetrics: meter cannot be nil", err.Error())
}

func TestKernelMetrics_NilReceiverIsNoop(t *testing.T) {
	var km *telemetry.KernelMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		km.RecordJournalPosted(ctx, uuid.New(), "kernel.gl.posting")
		km.RecordJournalRejected(ctx, uuid.New(), "kernel.gl.posting")
		km.RecordStockMovement(ctx, uuid.New(), "FIFO", "issue")
		km.RecordRevaluationRun(ctx, uuid.New(), true)
		km.RecordDepreciationPosted(ctx, uuid.New(), 1, 0)
		km.RecordPaymentAllocations(ctx, uuid.New(), "AR", 2)
		km.RecordReconciliationDifferences(ctx, uuid.New(), "AP", 1)
		km.RecordEventPublishFailure(ctx, "GL.JOURNAL_POSTED")
		km.ObserveOperation(ctx, "post_journal", time.Now(), nil)
	})
}

func TestKernelMetrics_NoopMeter(t *testing.T) {
	km, err := telemetry.NewKernelMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	km.RecordJournalPosted(context.Background(), uuid.New(), "kernel.gl.posting")
	km.ObserveOperation(context.Background(), "post_journal", time.Now(), errors.New("boom"))
}

func TestKernelMetrics_Counts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	km, err := telemetry.NewKernelMetrics(provider.Meter(telemetry.MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	km.RecordJournalPosted(ctx, tenantID, "kernel.gl.posting")
	km.RecordJournalPosted(ctx, tenantID, "kernel.assets.depreciation")
	km.RecordJournalRejected(ctx, tenantID, "kernel.gl.posting")
	km.RecordDepreciationPosted(ctx, tenantID, 3, 1)
	km.RecordPaymentAllocations(ctx, tenantID, "AR", 2)

	assert.Equal(t, int64(2), collectSum(t, reader, "kernel_journals_posted_total"))
	assert.Equal(t, int64(1), collectSum(t, reader, "kernel_journals_rejected_total"))
	assert.Equal(t, int64(4), collectSum(t, reader, "kernel_depreciation_postings_total"))
	assert.Equal(t, int64(2), collectSum(t, reader, "kernel_payment_allocations_total"))
}
