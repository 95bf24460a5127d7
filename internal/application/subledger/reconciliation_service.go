package subledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReconciliationService compares GL control accounts with their sub-ledgers
type ReconciliationService struct {
	controls subledger.ControlAccountBalanceRepository
	open     subledger.SubLedgerControlBalanceRepository
	logger   *zap.Logger
	metrics  *telemetry.KernelMetrics
}

// NewReconciliationService creates a reconciliation service
func NewReconciliationService(
	controls subledger.ControlAccountBalanceRepository,
	open subledger.SubLedgerControlBalanceRepository,
	opts ...Option,
) *ReconciliationService {
	o := applyOptions(opts)
	return &ReconciliationService{
		controls: controls,
		open:     open,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// ReconcileControlAccounts reports every control account of the sub-ledger
// whose balance differs from the sum of its open invoices as of asOf
func (s *ReconciliationService) ReconcileControlAccounts(
	ctx context.Context,
	tenantID uuid.UUID,
	typ subledger.Type,
	asOf time.Time,
) (result *subledger.Reconciliation, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "subledger", "reconcile_control_accounts",
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("type", string(typ)),
	)
	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.ObserveOperation(ctx, "reconcile_control_accounts", started, err)
		span.End()
	}()

	if !subledger.ValidType(typ) {
		return nil, fmt.Errorf("%w: sub-ledger type %q", shared.ErrInvalidInput, typ)
	}
	controls, err := s.controls.ListControlBalances(ctx, tenantID, typ, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list control balances: %w", err)
	}
	open, err := s.open.SumOpenByControlAccount(ctx, tenantID, typ, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sub-ledger balances: %w", err)
	}

	reconciliation := subledger.Reconcile(controls, open)
	s.metrics.RecordReconciliationDifferences(ctx, tenantID, string(typ), len(reconciliation.Differences))
	if !reconciliation.IsInBalance {
		s.logger.Warn("Control accounts out of balance",
			zap.String("tenant_id", tenantID.String()),
			zap.String("type", string(typ)),
			zap.Int("differences", len(reconciliation.Differences)),
		)
	}
	return &reconciliation, nil
}
