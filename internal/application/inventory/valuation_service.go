package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ValuationService applies stock movements to the stock ledger using the
// item's valuation method
type ValuationService struct {
	items   inventory.StockItemRepository
	ledger  inventory.StockLedgerRepository
	layers  inventory.CostLayerRepository
	ids     shared.IDGenerator
	clock   shared.Clock
	logger  *zap.Logger
	metrics *telemetry.KernelMetrics
}

// NewValuationService creates a valuation service
func NewValuationService(
	items inventory.StockItemRepository,
	ledger inventory.StockLedgerRepository,
	layers inventory.CostLayerRepository,
	ids shared.IDGenerator,
	clock shared.Clock,
	opts ...Option,
) *ValuationService {
	o := applyOptions(opts)
	return &ValuationService{
		items:   items,
		ledger:  ledger,
		layers:  layers,
		ids:     ids,
		clock:   clock,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// ApplyStockMovement values the movement against the latest entry on or
// before its posting date and appends exactly one new stock ledger entry.
// FIFO layers opened or drawn down are saved with it; prior entries are never touched.
// A FIFO movement dated before the latest entry fails with inventory.ErrBackdatedMovement.
func (s *ValuationService) ApplyStockMovement(ctx context.Context, m inventory.StockMovement) (entry *inventory.StockLedgerEntry, err error) {
	if m.QtyChange.IsZero() {
		return nil, inventory.ErrInvalidQuantity
	}
	if m.IsReceipt() && m.IncomingRate.IsNegative() {
		return nil, fmt.Errorf("%w: incoming rate cannot be negative", shared.ErrInvalidInput)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "apply_stock_movement",
		attribute.String("tenant_id", m.TenantID.String()),
		attribute.String("item_id", m.ItemID.String()),
		attribute.String("direction", m.Direction()),
	)
	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.ObserveOperation(ctx, "apply_stock_movement", started, err)
		span.End()
	}()

	item, err := s.items.FindByID(ctx, m.TenantID, m.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find item %s: %w", m.ItemID, err)
	}
	method, err := inventory.ResolveValuationMethod(item.ValuationMethod)
	if err != nil {
		return nil, err
	}

	postingDate := shared.DateOf(m.PostingDate)
	prev, prevID, err := s.previousState(ctx, m.TenantID, m.ItemID, m.WarehouseID, postingDate)
	if err != nil {
		return nil, err
	}

	var layers []*inventory.CostLayer
	if method.Code() == inventory.ValuationFIFO {
		if err := s.rejectBackdated(ctx, m, postingDate); err != nil {
			return nil, err
		}
		layers, err = s.layers.ListOpen(ctx, m.TenantID, m.ItemID, m.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("failed to list cost layers: %w", err)
		}
	}

	outcome, err := method.Apply(prev, layers, m.QtyChange, m.IncomingRate)
	if err != nil {
		s.logger.Warn("Stock movement rejected",
			zap.String("item_id", m.ItemID.String()),
			zap.String("warehouse_id", m.WarehouseID.String()),
			zap.String("qty_change", m.QtyChange.String()),
			zap.Error(err),
		)
		return nil, err
	}

	now := s.clock.Now()
	entry = &inventory.StockLedgerEntry{
		ID:                   s.ids.Generate(),
		TenantID:             m.TenantID,
		ItemID:               m.ItemID,
		WarehouseID:          m.WarehouseID,
		PostingDate:          postingDate,
		QtyChange:            m.QtyChange,
		IncomingRate:         m.IncomingRate,
		ValuationMethod:      method.Code(),
		BalanceQty:           outcome.State.Qty,
		ValuationRate:        outcome.State.Rate,
		BalanceValue:         outcome.State.Value,
		StockValueDifference: outcome.State.Value.Sub(prev.Value),
		IssueCost:            outcome.IssueCost,
		VoucherType:          m.VoucherType,
		VoucherID:            m.VoucherID,
		PreviousEntryID:      prevID,
		CreatedAt:            now,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append stock ledger entry: %w", err)
	}

	if err := s.saveLayers(ctx, entry, layers, outcome); err != nil {
		return nil, err
	}

	s.metrics.RecordStockMovement(ctx, m.TenantID, string(method.Code()), m.Direction())
	s.logger.Info("Stock movement applied",
		zap.String("tenant_id", m.TenantID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("item_id", m.ItemID.String()),
		zap.String("method", string(method.Code())),
		zap.String("balance_qty", entry.BalanceQty.String()),
		zap.String("balance_value", entry.BalanceValue.String()),
	)
	return entry, nil
}

func (s *ValuationService) previousState(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID, asOf time.Time) (inventory.ValuationState, *uuid.UUID, error) {
	prev, err := s.ledger.LatestOnOrBefore(ctx, tenantID, itemID, warehouseID, asOf)
	if errors.Is(err, shared.ErrNotFound) {
		return inventory.ZeroState(), nil, nil
	}
	if err != nil {
		return inventory.ValuationState{}, nil, fmt.Errorf("failed to read stock ledger: %w", err)
	}
	id := prev.ID
	return prev.State(), &id, nil
}

// rejectBackdated fails a FIFO movement dated before the latest entry; same-day
// movements are accepted
func (s *ValuationService) rejectBackdated(ctx context.Context, m inventory.StockMovement, postingDate time.Time) error {
	latest, err := s.ledger.Latest(ctx, m.TenantID, m.ItemID, m.WarehouseID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stock ledger: %w", err)
	}
	if latestDate := shared.DateOf(latest.PostingDate); postingDate.Before(latestDate) {
		s.logger.Warn("Backdated FIFO movement rejected",
			zap.String("item_id", m.ItemID.String()),
			zap.String("warehouse_id", m.WarehouseID.String()),
			zap.Time("posting_date", postingDate),
			zap.Time("latest_entry_date", latestDate),
		)
		return fmt.Errorf("%w: posting date %s is before %s",
			inventory.ErrBackdatedMovement, postingDate.Format("2006-01-02"), latestDate.Format("2006-01-02"))
	}
	return nil
}

// saveLayers persists drawn-down layers and the layer a receipt opens. New
// layers sequence after every open layer so same-day receipts keep arrival order.
func (s *ValuationService) saveLayers(ctx context.Context, entry *inventory.StockLedgerEntry, open []*inventory.CostLayer, outcome inventory.ValuationOutcome) error {
	changed := make([]*inventory.CostLayer, 0, len(outcome.Consumed)+1)
	for _, c := range outcome.Consumed {
		changed = append(changed, c.Layer)
	}
	if layer := outcome.NewLayer; layer != nil {
		layer.ID = s.ids.Generate()
		layer.TenantID = entry.TenantID
		layer.ItemID = entry.ItemID
		layer.WarehouseID = entry.WarehouseID
		layer.PostingDate = entry.PostingDate
		layer.Sequence = nextSequence(open)
		layer.SourceEntryID = entry.ID
		changed = append(changed, layer)
	}
	if len(changed) == 0 {
		return nil
	}
	if err := s.layers.Save(ctx, changed...); err != nil {
		return fmt.Errorf("failed to save cost layers: %w", err)
	}
	return nil
}

// GetValuationSnapshot returns the running balance recorded by the latest
// entry on or before asOf; an item with no history is valued at zero.
func (s *ValuationService) GetValuationSnapshot(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID, asOf time.Time) (inventory.ValuationSnapshot, error) {
	state, _, err := s.previousState(ctx, tenantID, itemID, warehouseID, shared.DateOf(asOf))
	if err != nil {
		return inventory.ValuationSnapshot{}, err
	}
	return inventory.ValuationSnapshot{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		AsOf:        shared.DateOf(asOf),
		Qty:         state.Qty,
		Rate:        state.Rate,
		Value:       state.Value,
	}, nil
}

func nextSequence(open []*inventory.CostLayer) int64 {
	var highest int64
	for _, l := range open {
		if l.Sequence > highest {
			highest = l.Sequence
		}
	}
	return highest + 1
}
