package memory

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
)

// StockItemRepository implements inventory.StockItemRepository
type StockItemRepository struct{ s *Store }

// StockItems returns the store's item repository
func (s *Store) StockItems() *StockItemRepository { return &StockItemRepository{s} }

// FindByID returns a copy of the item
func (r *StockItemRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

// StockLedgerRepository implements inventory.StockLedgerRepository
type StockLedgerRepository struct{ s *Store }

// StockLedger returns the store's stock ledger repository
func (s *Store) StockLedger() *StockLedgerRepository { return &StockLedgerRepository{s} }

// LatestOnOrBefore returns the latest entry by posting date, then by insertion order
func (r *StockLedgerRepository) LatestOnOrBefore(_ context.Context, tenantID, itemID, warehouseID uuid.UUID, asOf time.Time) (*inventory.StockLedgerEntry, error) {
	on := shared.DateOf(asOf)
	return r.latest(tenantID, itemID, warehouseID, func(e *inventory.StockLedgerEntry) bool {
		return !shared.DateOf(e.PostingDate).After(on)
	})
}

// Latest returns the latest entry regardless of date
func (r *StockLedgerRepository) Latest(_ context.Context, tenantID, itemID, warehouseID uuid.UUID) (*inventory.StockLedgerEntry, error) {
	return r.latest(tenantID, itemID, warehouseID, func(*inventory.StockLedgerEntry) bool { return true })
}

func (r *StockLedgerRepository) latest(tenantID, itemID, warehouseID uuid.UUID, keep func(*inventory.StockLedgerEntry) bool) (*inventory.StockLedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *inventory.StockLedgerEntry
	for _, e := range r.s.sles {
		if e.TenantID != tenantID || e.ItemID != itemID || e.WarehouseID != warehouseID {
			continue
		}
		if !keep(e) {
			continue
		}
		if latest == nil || !e.PostingDate.Before(latest.PostingDate) {
			latest = e
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// Append stores a copy of the entry
func (r *StockLedgerRepository) Append(_ context.Context, entry *inventory.StockLedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.sles = append(r.s.sles, &cp)
	return nil
}

// Entries returns copies of all entries for an item and warehouse in insertion order
func (r *StockLedgerRepository) Entries(tenantID, itemID, warehouseID uuid.UUID) []inventory.StockLedgerEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []inventory.StockLedgerEntry
	for _, e := range r.s.sles {
		if e.TenantID == tenantID && e.ItemID == itemID && e.WarehouseID == warehouseID {
			out = append(out, *e)
		}
	}
	return out
}

// CostLayerRepository implements inventory.CostLayerRepository
type CostLayerRepository struct{ s *Store }

// CostLayers returns the store's cost layer repository
func (s *Store) CostLayers() *CostLayerRepository { return &CostLayerRepository{s} }

// ListOpen returns copies of layers with remaining quantity, oldest first
func (r *CostLayerRepository) ListOpen(_ context.Context, tenantID, itemID, warehouseID uuid.UUID) ([]*inventory.CostLayer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*inventory.CostLayer, 0)
	for _, l := range r.s.layers {
		if l.TenantID != tenantID || l.ItemID != itemID || l.WarehouseID != warehouseID || l.IsExhausted() {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return inventory.SortLayers(out), nil
}

// Save upserts layers by id
func (r *CostLayerRepository) Save(_ context.Context, layers ...*inventory.CostLayer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range layers {
		cp := *l
		r.s.layers[l.ID] = &cp
	}
	return nil
}

// BaseDocumentRepository implements inventory.BaseDocumentRepository and
// inventory.LandedCostApplier
type BaseDocumentRepository struct{ s *Store }

// BaseDocuments returns the store's base document repository
func (s *Store) BaseDocuments() *BaseDocumentRepository { return &BaseDocumentRepository{s} }

// ListReceiptLines returns the seeded lines of the document
func (r *BaseDocumentRepository) ListReceiptLines(_ context.Context, _, documentID uuid.UUID) ([]inventory.ReceiptLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lines, ok := r.s.receiptLines[documentID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]inventory.ReceiptLine(nil), lines...), nil
}

// ApplyLandedCost records the allocations against the document
func (r *BaseDocumentRepository) ApplyLandedCost(_ context.Context, _, documentID uuid.UUID, allocations []inventory.LandedCostAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.landedCosts[documentID] = append(r.s.landedCosts[documentID], allocations...)
	return nil
}
