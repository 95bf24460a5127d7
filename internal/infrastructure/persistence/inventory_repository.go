package persistence

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements inventory.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a stock item repository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds an item of the tenant
func (r *GormStockItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockItem, error) {
	var m models.StockItemModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Save inserts or replaces item metadata
func (r *GormStockItemRepository) Save(ctx context.Context, items ...*inventory.StockItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.StockItemModel, len(items))
	for i, it := range items {
		rows[i] = models.StockItemModelFromDomain(it)
	}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error)
}

// GormStockLedgerRepository implements inventory.StockLedgerRepository using
// GORM. Entries of one item and warehouse are numbered by a sequence that
// breaks ties between entries with the same posting time.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a stock ledger repository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// LatestOnOrBefore returns the last entry posted on or before asOf's calendar day
func (r *GormStockLedgerRepository) LatestOnOrBefore(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID, asOf time.Time) (*inventory.StockLedgerEntry, error) {
	nextDay := shared.DateOf(asOf).AddDate(0, 0, 1)
	var m models.StockLedgerEntryModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("item_id = ? AND warehouse_id = ? AND posting_date < ?", itemID, warehouseID, nextDay).
		Order("posting_date DESC, seq DESC").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Latest returns the last entry posted for the item and warehouse
func (r *GormStockLedgerRepository) Latest(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID) (*inventory.StockLedgerEntry, error) {
	var m models.StockLedgerEntryModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		Order("posting_date DESC, seq DESC").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Append stores the entry after the item and warehouse's last one
func (r *GormStockLedgerRepository) Append(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	db := r.db.WithContext(ctx)
	var last int64
	err := db.Model(&models.StockLedgerEntryModel{}).
		Scopes(tenantScope(entry.TenantID)).
		Where("item_id = ? AND warehouse_id = ?", entry.ItemID, entry.WarehouseID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return err
	}
	m := models.StockLedgerEntryModelFromDomain(entry, last+1)
	m.PostingDate = m.PostingDate.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	return translate(db.Create(m).Error)
}

// GormCostLayerRepository implements inventory.CostLayerRepository using GORM
type GormCostLayerRepository struct {
	db *gorm.DB
}

// NewGormCostLayerRepository creates a cost layer repository
func NewGormCostLayerRepository(db *gorm.DB) *GormCostLayerRepository {
	return &GormCostLayerRepository{db: db}
}

// ListOpen returns layers with remaining quantity, oldest first
func (r *GormCostLayerRepository) ListOpen(ctx context.Context, tenantID, itemID, warehouseID uuid.UUID) ([]*inventory.CostLayer, error) {
	var rows []models.CostLayerModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("item_id = ? AND warehouse_id = ? AND remaining_qty > 0", itemID, warehouseID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	layers := make([]*inventory.CostLayer, len(rows))
	for i := range rows {
		layers[i] = rows[i].ToDomain()
	}
	return inventory.SortLayers(layers), nil
}

// Save inserts new layers and updates the remaining quantity of existing ones
func (r *GormCostLayerRepository) Save(ctx context.Context, layers ...*inventory.CostLayer) error {
	if len(layers) == 0 {
		return nil
	}
	rows := make([]*models.CostLayerModel, len(layers))
	for i, l := range layers {
		rows[i] = models.CostLayerModelFromDomain(l)
		rows[i].PostingDate = rows[i].PostingDate.UTC()
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remaining_qty"}),
		}).
		Create(&rows).Error)
}

// GormBaseDocumentRepository implements inventory.BaseDocumentRepository and
// inventory.LandedCostApplier over the receipt line tables
type GormBaseDocumentRepository struct {
	db    *gorm.DB
	ids   shared.IDGenerator
	clock shared.Clock
}

// NewGormBaseDocumentRepository creates a base document repository
func NewGormBaseDocumentRepository(db *gorm.DB, ids shared.IDGenerator, clock shared.Clock) *GormBaseDocumentRepository {
	return &GormBaseDocumentRepository{db: db, ids: ids, clock: clock}
}

// ListReceiptLines returns the document's receiving lines in line order
func (r *GormBaseDocumentRepository) ListReceiptLines(ctx context.Context, tenantID, documentID uuid.UUID) ([]inventory.ReceiptLine, error) {
	var rows []models.ReceiptLineModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("document_id = ?", documentID).
		Order("line_no").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	lines := make([]inventory.ReceiptLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// SaveReceiptLines stores the receiving lines of a document, numbered in order
func (r *GormBaseDocumentRepository) SaveReceiptLines(ctx context.Context, tenantID, documentID uuid.UUID, lines ...inventory.ReceiptLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]*models.ReceiptLineModel, len(lines))
	for i, l := range lines {
		rows[i] = &models.ReceiptLineModel{
			LineID:      l.LineID,
			TenantID:    tenantID,
			DocumentID:  documentID,
			LineNo:      i + 1,
			ItemID:      l.ItemID,
			WarehouseID: l.WarehouseID,
			Qty:         l.Qty,
			BaseValue:   l.BaseValue,
		}
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// ApplyLandedCost records the allocations against the document
func (r *GormBaseDocumentRepository) ApplyLandedCost(ctx context.Context, tenantID, documentID uuid.UUID, allocations []inventory.LandedCostAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	now := r.clock.Now()
	rows := make([]*models.LandedCostAllocationModel, len(allocations))
	for i, a := range allocations {
		rows[i] = &models.LandedCostAllocationModel{
			ID:              r.ids.Generate(),
			TenantID:        tenantID,
			DocumentID:      documentID,
			LineID:          a.LineID,
			ItemID:          a.ItemID,
			WarehouseID:     a.WarehouseID,
			Qty:             a.Qty,
			BaseValue:       a.BaseValue,
			AllocatedAmount: a.AllocatedAmount,
			AppliedAt:       now,
		}
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// LandedCosts returns the allocations applied to a document
func (r *GormBaseDocumentRepository) LandedCosts(ctx context.Context, tenantID, documentID uuid.UUID) ([]inventory.LandedCostAllocation, error) {
	var rows []models.LandedCostAllocationModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("document_id = ?", documentID).
		Order("applied_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]inventory.LandedCostAllocation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ inventory.StockItemRepository    = (*GormStockItemRepository)(nil)
	_ inventory.StockLedgerRepository  = (*GormStockLedgerRepository)(nil)
	_ inventory.CostLayerRepository    = (*GormCostLayerRepository)(nil)
	_ inventory.BaseDocumentRepository = (*GormBaseDocumentRepository)(nil)
	_ inventory.LandedCostApplier      = (*GormBaseDocumentRepository)(nil)
)
