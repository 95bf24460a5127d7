package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is item metadata read by the valuation engine
type StockItem struct {
	ID                       uuid.UUID
	TenantID                 uuid.UUID
	Code                     string
	Name                     string
	ValuationMethod          ValuationMethodCode
	InventoryAccountID       uuid.UUID
	CostOfGoodsSoldAccountID uuid.UUID
	StockAdjustmentAccountID uuid.UUID
}

// StockMovement is a receipt (positive QtyChange) or issue (negative QtyChange)
type StockMovement struct {
	TenantID     uuid.UUID
	ItemID       uuid.UUID
	WarehouseID  uuid.UUID
	PostingDate  time.Time
	QtyChange    decimal.Decimal
	IncomingRate decimal.Decimal // receipts only
	VoucherType  string
	VoucherID    uuid.UUID
}

// IsReceipt returns true for inbound movements
func (m StockMovement) IsReceipt() bool {
	return m.QtyChange.IsPositive()
}

// Direction labels the movement for logs and metrics
func (m StockMovement) Direction() string {
	if m.IsReceipt() {
		return "receipt"
	}
	return "issue"
}

// StockLedgerEntry is an append-only record of one movement and the running
// balance after it. Entries are never updated.
type StockLedgerEntry struct {
	ID                   uuid.UUID
	TenantID             uuid.UUID
	ItemID               uuid.UUID
	WarehouseID          uuid.UUID
	PostingDate          time.Time
	QtyChange            decimal.Decimal
	IncomingRate         decimal.Decimal
	ValuationMethod      ValuationMethodCode
	BalanceQty           decimal.Decimal
	ValuationRate        decimal.Decimal
	BalanceValue         decimal.Decimal
	StockValueDifference decimal.Decimal
	IssueCost            decimal.Decimal
	VoucherType          string
	VoucherID            uuid.UUID
	PreviousEntryID      *uuid.UUID
	CreatedAt            time.Time
}

// State returns the running balance recorded by the entry
func (e *StockLedgerEntry) State() ValuationState {
	return ValuationState{Qty: e.BalanceQty, Rate: e.ValuationRate, Value: e.BalanceValue}
}

// CostLayer is a FIFO batch of stock at a fixed unit cost
type CostLayer struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ItemID        uuid.UUID
	WarehouseID   uuid.UUID
	PostingDate   time.Time
	Sequence      int64
	OriginalQty   decimal.Decimal
	RemainingQty  decimal.Decimal
	UnitCost      decimal.Decimal
	SourceEntryID uuid.UUID
}

// Value returns the remaining value of the layer
func (l *CostLayer) Value() decimal.Decimal {
	return l.RemainingQty.Mul(l.UnitCost)
}

// IsExhausted returns true once nothing remains in the layer
func (l *CostLayer) IsExhausted() bool {
	return !l.RemainingQty.IsPositive()
}

// ValuationSnapshot is the valued stock position of an item/warehouse at a date
type ValuationSnapshot struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	AsOf        time.Time
	Qty         decimal.Decimal
	Rate        decimal.Decimal
	Value       decimal.Decimal
}
