package subledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgingService summarises open invoices into past-due buckets
type AgingService struct {
	view    subledger.AgingInvoiceViewRepository
	buckets []subledger.BucketConfig
	logger  *zap.Logger
	metrics *telemetry.KernelMetrics
}

// NewAgingService creates an aging service. Without WithDefaultBuckets the
// standard CURRENT/1-30/31-60/61-90/90+ buckets apply.
func NewAgingService(view subledger.AgingInvoiceViewRepository, opts ...Option) *AgingService {
	o := applyOptions(opts)
	return &AgingService{
		view:    view,
		buckets: o.buckets,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// GetAgingSummary returns one summary per party and currency as of asOf.
// An empty bucket list uses the service's default buckets.
func (s *AgingService) GetAgingSummary(
	ctx context.Context,
	tenantID uuid.UUID,
	typ subledger.Type,
	asOf time.Time,
	buckets []subledger.BucketConfig,
) (summaries []subledger.AgingSummary, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveOperation(ctx, "aging_summary", started, err)
	}()

	if !subledger.ValidType(typ) {
		return nil, fmt.Errorf("%w: sub-ledger type %q", shared.ErrInvalidInput, typ)
	}
	if len(buckets) == 0 {
		buckets = s.buckets
	}

	invoices, err := s.view.ListOpenInvoices(ctx, tenantID, typ, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	summaries = subledger.ComputeAging(invoices, shared.DateOf(asOf), buckets)

	s.logger.Debug("Aging computed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("type", string(typ)),
		zap.String("as_of", asOf.Format("2006-01-02")),
		zap.Int("invoices", len(invoices)),
		zap.Int("parties", len(summaries)),
	)
	return summaries, nil
}
