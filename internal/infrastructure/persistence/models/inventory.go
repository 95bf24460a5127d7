package models

import (
	"time"

	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItemModel is the persistence model for stock item metadata
type StockItemModel struct {
	ID                       uuid.UUID                     `gorm:"type:uuid;primaryKey"`
	TenantID                 uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Code                     string                        `gorm:"type:varchar(64);not null"`
	Name                     string                        `gorm:"type:varchar(200);not null"`
	ValuationMethod          inventory.ValuationMethodCode `gorm:"type:varchar(20);not null"`
	InventoryAccountID       uuid.UUID                     `gorm:"type:uuid;not null"`
	CostOfGoodsSoldAccountID uuid.UUID                     `gorm:"type:uuid;not null"`
	StockAdjustmentAccountID uuid.UUID                     `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (StockItemModel) TableName() string {
	return "inv_stock_items"
}

// ToDomain converts the model to a domain StockItem
func (m *StockItemModel) ToDomain() *inventory.StockItem {
	return &inventory.StockItem{
		ID:                       m.ID,
		TenantID:                 m.TenantID,
		Code:                     m.Code,
		Name:                     m.Name,
		ValuationMethod:          m.ValuationMethod,
		InventoryAccountID:       m.InventoryAccountID,
		CostOfGoodsSoldAccountID: m.CostOfGoodsSoldAccountID,
		StockAdjustmentAccountID: m.StockAdjustmentAccountID,
	}
}

// StockItemModelFromDomain creates a model from a domain StockItem
func StockItemModelFromDomain(it *inventory.StockItem) *StockItemModel {
	return &StockItemModel{
		ID:                       it.ID,
		TenantID:                 it.TenantID,
		Code:                     it.Code,
		Name:                     it.Name,
		ValuationMethod:          it.ValuationMethod,
		InventoryAccountID:       it.InventoryAccountID,
		CostOfGoodsSoldAccountID: it.CostOfGoodsSoldAccountID,
		StockAdjustmentAccountID: it.StockAdjustmentAccountID,
	}
}

// StockLedgerEntryModel is the persistence model for the append-only stock
// ledger. Seq orders entries sharing a posting date.
type StockLedgerEntryModel struct {
	ID                   uuid.UUID                     `gorm:"type:uuid;primaryKey"`
	Seq                  int64                         `gorm:"not null;index:idx_inv_sle_lookup,priority:5"`
	TenantID             uuid.UUID                     `gorm:"type:uuid;not null;index:idx_inv_sle_lookup,priority:1"`
	ItemID               uuid.UUID                     `gorm:"type:uuid;not null;index:idx_inv_sle_lookup,priority:2"`
	WarehouseID          uuid.UUID                     `gorm:"type:uuid;not null;index:idx_inv_sle_lookup,priority:3"`
	PostingDate          time.Time                     `gorm:"not null;index:idx_inv_sle_lookup,priority:4"`
	QtyChange            decimal.Decimal               `gorm:"type:numeric(20,6);not null"`
	IncomingRate         decimal.Decimal               `gorm:"type:numeric(24,10);not null"`
	ValuationMethod      inventory.ValuationMethodCode `gorm:"type:varchar(20);not null"`
	BalanceQty           decimal.Decimal               `gorm:"type:numeric(20,6);not null"`
	ValuationRate        decimal.Decimal               `gorm:"type:numeric(24,10);not null"`
	BalanceValue         decimal.Decimal               `gorm:"type:numeric(20,6);not null"`
	StockValueDifference decimal.Decimal               `gorm:"type:numeric(20,6);not null"`
	IssueCost            decimal.Decimal               `gorm:"type:numeric(20,6);not null"`
	VoucherType          string                        `gorm:"type:varchar(50)"`
	VoucherID            uuid.UUID                     `gorm:"type:uuid"`
	PreviousEntryID      *uuid.UUID                    `gorm:"type:uuid"`
	CreatedAt            time.Time                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLedgerEntryModel) TableName() string {
	return "inv_stock_ledger_entries"
}

// ToDomain converts the model to a domain StockLedgerEntry
func (m *StockLedgerEntryModel) ToDomain() *inventory.StockLedgerEntry {
	return &inventory.StockLedgerEntry{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		ItemID:               m.ItemID,
		WarehouseID:          m.WarehouseID,
		PostingDate:          m.PostingDate,
		QtyChange:            m.QtyChange,
		IncomingRate:         m.IncomingRate,
		ValuationMethod:      m.ValuationMethod,
		BalanceQty:           m.BalanceQty,
		ValuationRate:        m.ValuationRate,
		BalanceValue:         m.BalanceValue,
		StockValueDifference: m.StockValueDifference,
		IssueCost:            m.IssueCost,
		VoucherType:          m.VoucherType,
		VoucherID:            m.VoucherID,
		PreviousEntryID:      m.PreviousEntryID,
		CreatedAt:            m.CreatedAt,
	}
}

// StockLedgerEntryModelFromDomain creates a model from a domain StockLedgerEntry
func StockLedgerEntryModelFromDomain(e *inventory.StockLedgerEntry, seq int64) *StockLedgerEntryModel {
	return &StockLedgerEntryModel{
		ID:                   e.ID,
		Seq:                  seq,
		TenantID:             e.TenantID,
		ItemID:               e.ItemID,
		WarehouseID:          e.WarehouseID,
		PostingDate:          e.PostingDate,
		QtyChange:            e.QtyChange,
		IncomingRate:         e.IncomingRate,
		ValuationMethod:      e.ValuationMethod,
		BalanceQty:           e.BalanceQty,
		ValuationRate:        e.ValuationRate,
		BalanceValue:         e.BalanceValue,
		StockValueDifference: e.StockValueDifference,
		IssueCost:            e.IssueCost,
		VoucherType:          e.VoucherType,
		VoucherID:            e.VoucherID,
		PreviousEntryID:      e.PreviousEntryID,
		CreatedAt:            e.CreatedAt,
	}
}

// CostLayerModel is the persistence model for FIFO cost layers
type CostLayerModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_layer_lookup,priority:1"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_layer_lookup,priority:2"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_layer_lookup,priority:3"`
	PostingDate   time.Time       `gorm:"not null"`
	Sequence      int64           `gorm:"not null"`
	OriginalQty   decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	RemainingQty  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UnitCost      decimal.Decimal `gorm:"type:numeric(24,10);not null"`
	SourceEntryID uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CostLayerModel) TableName() string {
	return "inv_cost_layers"
}

// ToDomain converts the model to a domain CostLayer
func (m *CostLayerModel) ToDomain() *inventory.CostLayer {
	return &inventory.CostLayer{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ItemID:        m.ItemID,
		WarehouseID:   m.WarehouseID,
		PostingDate:   m.PostingDate,
		Sequence:      m.Sequence,
		OriginalQty:   m.OriginalQty,
		RemainingQty:  m.RemainingQty,
		UnitCost:      m.UnitCost,
		SourceEntryID: m.SourceEntryID,
	}
}

// CostLayerModelFromDomain creates a model from a domain CostLayer
func CostLayerModelFromDomain(l *inventory.CostLayer) *CostLayerModel {
	return &CostLayerModel{
		ID:            l.ID,
		TenantID:      l.TenantID,
		ItemID:        l.ItemID,
		WarehouseID:   l.WarehouseID,
		PostingDate:   l.PostingDate,
		Sequence:      l.Sequence,
		OriginalQty:   l.OriginalQty,
		RemainingQty:  l.RemainingQty,
		UnitCost:      l.UnitCost,
		SourceEntryID: l.SourceEntryID,
	}
}

// ReceiptLineModel is a receiving line of a base document (purchase receipt)
// that landed cost can be allocated to
type ReceiptLineModel struct {
	LineID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_receipt_doc,priority:1"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_receipt_doc,priority:2"`
	LineNo      int             `gorm:"not null"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null"`
	Qty         decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	BaseValue   decimal.Decimal `gorm:"type:numeric(20,6);not null"`
}

// TableName returns the table name for GORM
func (ReceiptLineModel) TableName() string {
	return "inv_receipt_lines"
}

// ToDomain converts the model to a domain ReceiptLine
func (m *ReceiptLineModel) ToDomain() inventory.ReceiptLine {
	return inventory.ReceiptLine{
		LineID:      m.LineID,
		ItemID:      m.ItemID,
		WarehouseID: m.WarehouseID,
		Qty:         m.Qty,
		BaseValue:   m.BaseValue,
	}
}

// LandedCostAllocationModel records landed cost applied to a receipt line
type LandedCostAllocationModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_landed_doc,priority:1"`
	DocumentID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_landed_doc,priority:2"`
	LineID          uuid.UUID       `gorm:"type:uuid;not null"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null"`
	Qty             decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	BaseValue       decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	AppliedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LandedCostAllocationModel) TableName() string {
	return "inv_landed_cost_allocations"
}

// ToDomain converts the model to a domain LandedCostAllocation
func (m *LandedCostAllocationModel) ToDomain() inventory.LandedCostAllocation {
	return inventory.LandedCostAllocation{
		LineID:          m.LineID,
		ItemID:          m.ItemID,
		WarehouseID:     m.WarehouseID,
		Qty:             m.Qty,
		BaseValue:       m.BaseValue,
		AllocatedAmount: m.AllocatedAmount,
	}
}
