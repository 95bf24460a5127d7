package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StockItemRepository reads item metadata
type StockItemRepository interface {
	// FindByID returns shared.ErrNotFound when the item does not exist for the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockItem, error)
}

// StockLedgerRepository is the append-only stock ledger
type StockLedgerRepository interface {
	// LatestOnOrBefore returns the most recent entry with posting date <= asOf,
	// or shared.ErrNotFound when the item/warehouse has no history yet
	LatestOnOrBefore(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID, asOf time.Time) (*StockLedgerEntry, error)

	// Latest returns the most recent entry regardless of date, or
	// shared.ErrNotFound when the item/warehouse has no history yet
	Latest(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID) (*StockLedgerEntry, error)

	// Append stores a new entry
	Append(ctx context.Context, entry *StockLedgerEntry) error
}

// CostLayerRepository stores FIFO cost layers
type CostLayerRepository interface {
	// ListOpen returns layers with remaining quantity, oldest first
	ListOpen(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID) ([]*CostLayer, error)

	// Save inserts new layers and updates the remaining quantity of existing ones
	Save(ctx context.Context, layers ...*CostLayer) error
}

// BaseDocumentRepository reads the receiving lines landed cost is allocated to
type BaseDocumentRepository interface {
	// ListReceiptLines returns shared.ErrNotFound when the document does not exist
	ListReceiptLines(ctx context.Context, tenantID, documentID uuid.UUID) ([]ReceiptLine, error)
}

// LandedCostApplier folds allocated landed cost into valuation. It is owned
// outside the kernel.
type LandedCostApplier interface {
	ApplyLandedCost(ctx context.Context, tenantID, documentID uuid.UUID, allocations []LandedCostAllocation) error
}
