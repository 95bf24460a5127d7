package inventory

import (
	"context"
	"testing"

	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, d(want).String(), got.String(), msgAndArgs...)
}

type valuationFixture struct {
	*testutil.Ledger
	warehouse uuid.UUID
	service   *ValuationService
}

func newValuationFixture(t *testing.T) *valuationFixture {
	l := testutil.NewLedger(t)
	return &valuationFixture{
		Ledger:    l,
		warehouse: uuid.New(),
		service:   NewValuationService(l.Store.StockItems(), l.Store.StockLedger(), l.Store.CostLayers(), l.IDs, l.Clock),
	}
}

func (f *valuationFixture) item(method inventory.ValuationMethodCode) *inventory.StockItem {
	item := &inventory.StockItem{ID: uuid.New(), TenantID: f.TenantID, Code: "SKU-1", Name: "Widget", ValuationMethod: method}
	f.Store.AddStockItems(item)
	return item
}

func (f *valuationFixture) move(t *testing.T, item *inventory.StockItem, day int, qty, rate string) *inventory.StockLedgerEntry {
	t.Helper()
	m := inventory.StockMovement{
		TenantID:    f.TenantID,
		ItemID:      item.ID,
		WarehouseID: f.warehouse,
		PostingDate: testutil.Date(2024, 5, day),
		QtyChange:   d(qty),
		VoucherType: "TEST",
		VoucherID:   uuid.New(),
	}
	if rate != "" {
		m.IncomingRate = d(rate)
	}
	entry, err := f.service.ApplyStockMovement(context.Background(), m)
	require.NoError(t, err)
	return entry
}

func TestApplyStockMovement_MovingAverage(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationMovingAverage)

	receipt := f.move(t, item, 1, "10", "5.00")
	assertDecimal(t, "10", receipt.BalanceQty)
	assertDecimal(t, "5", receipt.ValuationRate)
	assertDecimal(t, "50", receipt.BalanceValue)
	assertDecimal(t, "50", receipt.StockValueDifference)
	assert.Nil(t, receipt.PreviousEntryID)

	issue := f.move(t, item, 2, "-4", "")
	assertDecimal(t, "6", issue.BalanceQty)
	assertDecimal(t, "5", issue.ValuationRate)
	assertDecimal(t, "30", issue.BalanceValue)
	assertDecimal(t, "-20", issue.StockValueDifference)
	assertDecimal(t, "20", issue.IssueCost)
	require.NotNil(t, issue.PreviousEntryID)
	assert.Equal(t, receipt.ID, *issue.PreviousEntryID)

	second := f.move(t, item, 3, "6", "7.00")
	assertDecimal(t, "12", second.BalanceQty)
	assertDecimal(t, "6", second.ValuationRate)
	assertDecimal(t, "72", second.BalanceValue)
}

func TestApplyStockMovement_FIFO(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationFIFO)

	f.move(t, item, 1, "10", "5.00")
	f.move(t, item, 2, "5", "6.00")
	issue := f.move(t, item, 3, "-12", "")

	assertDecimal(t, "62", issue.IssueCost)
	assertDecimal(t, "3", issue.BalanceQty)
	assertDecimal(t, "18", issue.BalanceValue)
	assertDecimal(t, "6", issue.ValuationRate)

	open, err := f.Store.CostLayers().ListOpen(context.Background(), f.TenantID, item.ID, f.warehouse)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assertDecimal(t, "3", open[0].RemainingQty)
	assertDecimal(t, "6", open[0].UnitCost)
}

func TestApplyStockMovement_FIFOSameDayReceiptsKeepOrder(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationFIFO)

	f.move(t, item, 1, "4", "5.00")
	f.move(t, item, 1, "4", "9.00")
	issue := f.move(t, item, 1, "-5", "")

	assertDecimal(t, "29", issue.IssueCost)
}

func TestApplyStockMovement_FIFOInsufficientLayers(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationFIFO)
	f.move(t, item, 1, "3", "5.00")

	_, err := f.service.ApplyStockMovement(context.Background(), inventory.StockMovement{
		TenantID: f.TenantID, ItemID: item.ID, WarehouseID: f.warehouse,
		PostingDate: testutil.Date(2024, 5, 2), QtyChange: d("-4"),
	})

	assert.ErrorIs(t, err, shared.ErrInsufficientCostLayers)
	entries := f.Store.StockLedger().Entries(f.TenantID, item.ID, f.warehouse)
	assert.Len(t, entries, 1)
	open, _ := f.Store.CostLayers().ListOpen(context.Background(), f.TenantID, item.ID, f.warehouse)
	require.Len(t, open, 1)
	assertDecimal(t, "3", open[0].RemainingQty)
}

func TestApplyStockMovement_PriorEntriesNeverChange(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationMovingAverage)
	f.move(t, item, 10, "10", "5.00")
	before := f.Store.StockLedger().Entries(f.TenantID, item.ID, f.warehouse)

	backdated := f.move(t, item, 5, "2", "8.00")

	assert.Nil(t, backdated.PreviousEntryID, "chains from the latest entry on or before its own date")
	assertDecimal(t, "2", backdated.BalanceQty)
	after := f.Store.StockLedger().Entries(f.TenantID, item.ID, f.warehouse)
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
}

func TestApplyStockMovement_FIFORejectsBackdatedMovement(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationFIFO)
	f.move(t, item, 20, "10", "5.00")

	_, err := f.service.ApplyStockMovement(context.Background(), inventory.StockMovement{
		TenantID: f.TenantID, ItemID: item.ID, WarehouseID: f.warehouse,
		PostingDate: testutil.Date(2024, 5, 10), QtyChange: d("5"), IncomingRate: d("6.00"),
	})

	assert.ErrorIs(t, err, inventory.ErrBackdatedMovement)
	assert.Len(t, f.Store.StockLedger().Entries(f.TenantID, item.ID, f.warehouse), 1)
	open, err := f.Store.CostLayers().ListOpen(context.Background(), f.TenantID, item.ID, f.warehouse)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assertDecimal(t, "5", open[0].UnitCost)

	sameDay := f.move(t, item, 20, "5", "6.00")
	assertDecimal(t, "15", sameDay.BalanceQty)
	assertDecimal(t, "80", sameDay.BalanceValue)

	issue := f.move(t, item, 21, "-12", "")
	assertDecimal(t, "62", issue.IssueCost)
	assertDecimal(t, "18", issue.BalanceValue)
}

func TestApplyStockMovement_Rejections(t *testing.T) {
	f := newValuationFixture(t)
	avg := f.item(inventory.ValuationMovingAverage)
	lifo := f.item("LIFO")

	tests := []struct {
		name string
		m    inventory.StockMovement
		err  error
	}{
		{"zero quantity", inventory.StockMovement{TenantID: f.TenantID, ItemID: avg.ID, QtyChange: decimal.Zero}, inventory.ErrInvalidQuantity},
		{"negative rate", inventory.StockMovement{TenantID: f.TenantID, ItemID: avg.ID, QtyChange: d("1"), IncomingRate: d("-1")}, shared.ErrInvalidInput},
		{"unknown item", inventory.StockMovement{TenantID: f.TenantID, ItemID: uuid.New(), QtyChange: d("1")}, shared.ErrNotFound},
		{"unsupported method", inventory.StockMovement{TenantID: f.TenantID, ItemID: lifo.ID, QtyChange: d("1")}, shared.ErrUnsupportedValuationMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ApplyStockMovement(context.Background(), tt.m)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGetValuationSnapshot(t *testing.T) {
	f := newValuationFixture(t)
	item := f.item(inventory.ValuationMovingAverage)
	f.move(t, item, 1, "10", "5.00")
	f.move(t, item, 20, "-4", "")

	tests := []struct {
		day   int
		qty   string
		value string
	}{
		{1, "10", "50"},
		{15, "10", "50"},
		{31, "6", "30"},
	}
	for _, tt := range tests {
		snap, err := f.service.GetValuationSnapshot(context.Background(), f.TenantID, item.ID, f.warehouse, testutil.Date(2024, 5, tt.day))
		require.NoError(t, err)
		assertDecimal(t, tt.qty, snap.Qty, "day %d", tt.day)
		assertDecimal(t, tt.value, snap.Value, "day %d", tt.day)
	}

	empty, err := f.service.GetValuationSnapshot(context.Background(), f.TenantID, item.ID, uuid.New(), testutil.Date(2024, 5, 31))
	require.NoError(t, err)
	assert.True(t, empty.Qty.IsZero())
	assert.True(t, empty.Value.IsZero())
}
