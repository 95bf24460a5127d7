package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the kernel metrics
const MeterName = "erp-kernel"

// KernelMetrics records finance kernel activity. A nil *KernelMetrics is
// valid and records nothing, so services can run without telemetry.
type KernelMetrics struct {
	journalsPosted       *Counter
	journalsRejected     *Counter
	eventPublishFailures *Counter
	stockMovements       *Counter
	revaluationRuns      *Counter
	depreciationPostings *Counter
	paymentAllocations   *Counter
	reconciliationBreaks *Counter
	operationDuration    *Histogram
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewKernelMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewKernelMetrics registers the kernel instruments on meter.
func NewKernelMetrics(meter metric.Meter) (*KernelMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	km := &KernelMetrics{}
	counters := []struct {
		dst         **Counter
		name        string
		description string
		unit        string
	}{
		{&km.journalsPosted, "kernel_journals_posted_total", "Journals committed by the posting service", "{journals}"},
		{&km.journalsRejected, "kernel_journals_rejected_total", "Journal drafts rejected by validation", "{journals}"},
		{&km.eventPublishFailures, "kernel_event_publish_failures_total", "Events that failed to publish after commit", "{events}"},
		{&km.stockMovements, "kernel_stock_movements_total", "Stock movements valued", "{movements}"},
		{&km.revaluationRuns, "kernel_fx_revaluation_runs_total", "FX revaluation runs", "{runs}"},
		{&km.depreciationPostings, "kernel_depreciation_postings_total", "Depreciation schedule lines posted", "{lines}"},
		{&km.paymentAllocations, "kernel_payment_allocations_total", "Payment allocations created", "{allocations}"},
		{&km.reconciliationBreaks, "kernel_reconciliation_differences_total", "Control account differences found", "{differences}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	km.operationDuration, err = NewHistogram(meter,
		"kernel_operation_duration_ms",
		"Duration of kernel operations",
		"ms",
		1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000,
	)
	if err != nil {
		return nil, err
	}
	return km, nil
}

// RecordJournalPosted counts a committed journal
func (km *KernelMetrics) RecordJournalPosted(ctx context.Context, tenantID uuid.UUID, origin string) {
	if km == nil {
		return
	}
	km.journalsPosted.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOrigin.String(origin))
}

// RecordJournalRejected counts a draft that failed validation
func (km *KernelMetrics) RecordJournalRejected(ctx context.Context, tenantID uuid.UUID, origin string) {
	if km == nil {
		return
	}
	km.journalsRejected.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOrigin.String(origin))
}

// RecordEventPublishFailure counts an event lost after commit
func (km *KernelMetrics) RecordEventPublishFailure(ctx context.Context, eventType string) {
	if km == nil {
		return
	}
	km.eventPublishFailures.Inc(ctx, AttrOperation.String(eventType))
}

// RecordStockMovement counts a valued movement
func (km *KernelMetrics) RecordStockMovement(ctx context.Context, tenantID uuid.UUID, method, direction string) {
	if km == nil {
		return
	}
	km.stockMovements.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrMethod.String(method),
		AttrMovementDir.String(direction),
	)
}

// RecordRevaluationRun counts a revaluation run and whether it produced a journal
func (km *KernelMetrics) RecordRevaluationRun(ctx context.Context, tenantID uuid.UUID, posted bool) {
	if km == nil {
		return
	}
	outcome := "no_journal"
	if posted {
		outcome = "posted"
	}
	km.revaluationRuns.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOutcome.String(outcome))
}

// RecordDepreciationPosted counts posted and failed depreciation lines of a batch
func (km *KernelMetrics) RecordDepreciationPosted(ctx context.Context, tenantID uuid.UUID, posted, failed int) {
	if km == nil {
		return
	}
	km.depreciationPostings.Add(ctx, int64(posted), AttrTenantID.String(tenantID.String()), AttrOutcome.String("posted"))
	km.depreciationPostings.Add(ctx, int64(failed), AttrTenantID.String(tenantID.String()), AttrOutcome.String("failed"))
}

// RecordPaymentAllocations counts allocations created for a payment
func (km *KernelMetrics) RecordPaymentAllocations(ctx context.Context, tenantID uuid.UUID, ledgerType string, count int) {
	if km == nil {
		return
	}
	km.paymentAllocations.Add(ctx, int64(count), AttrTenantID.String(tenantID.String()), AttrLedgerType.String(ledgerType))
}

// RecordReconciliationDifferences counts control account differences
func (km *KernelMetrics) RecordReconciliationDifferences(ctx context.Context, tenantID uuid.UUID, ledgerType string, count int) {
	if km == nil {
		return
	}
	km.reconciliationBreaks.Add(ctx, int64(count), AttrTenantID.String(tenantID.String()), AttrLedgerType.String(ledgerType))
}

// ObserveOperation records how long a kernel operation took
func (km *KernelMetrics) ObserveOperation(ctx context.Context, operation string, started time.Time, err error) {
	if km == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	km.operationDuration.RecordDuration(ctx, time.Since(started), AttrOperation.String(operation), AttrOutcome.String(outcome))
}
