package persistence

import (
	"context"
	"testing"

	appinventory "github.com/erp/kernel/internal/application/inventory"
	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInventoryRepositories_FIFOValuation(t *testing.T) {
	ctx := context.Background()
	ids := clock.NewSequence()
	repos := NewRepositories(newTestDB(t), ids, clock.Fixed(testNow))
	tenantID, warehouseID := uuid.New(), uuid.New()
	item := &inventory.StockItem{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Code:            "WIDGET",
		Name:            "Widget",
		ValuationMethod: inventory.ValuationFIFO,
	}
	require.NoError(t, repos.StockItems().Save(ctx, item))

	svc := appinventory.NewValuationService(repos.StockItems(), repos.StockLedger(), repos.CostLayers(), ids, clock.Fixed(testNow))
	move := func(day int, qty, rate string) *inventory.StockLedgerEntry {
		entry, err := svc.ApplyStockMovement(ctx, inventory.StockMovement{
			TenantID:     tenantID,
			ItemID:       item.ID,
			WarehouseID:  warehouseID,
			PostingDate:  date(2024, 3, day),
			QtyChange:    decimal.RequireFromString(qty),
			IncomingRate: decimal.RequireFromString(rate),
		})
		require.NoError(t, err)
		return entry
	}

	move(1, "10", "5")
	move(1, "10", "6")
	issue := move(2, "-15", "0")

	assert.Equal(t, "80", issue.IssueCost.String())
	assert.Equal(t, "5", issue.BalanceQty.String())
	assert.Equal(t, "30", issue.BalanceValue.String())

	t.Run("only the partially consumed layer stays open", func(t *testing.T) {
		open, err := repos.CostLayers().ListOpen(ctx, tenantID, item.ID, warehouseID)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "5", open[0].RemainingQty.String())
		assert.Equal(t, "6", open[0].UnitCost.String())
	})

	t.Run("latest entry breaks same-day ties by sequence", func(t *testing.T) {
		latest, err := repos.StockLedger().LatestOnOrBefore(ctx, tenantID, item.ID, warehouseID, date(2024, 3, 1))
		require.NoError(t, err)
		assert.Equal(t, "20", latest.BalanceQty.String())
	})

	t.Run("no history before the first receipt", func(t *testing.T) {
		_, err := repos.StockLedger().LatestOnOrBefore(ctx, tenantID, item.ID, warehouseID, date(2024, 2, 29))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("latest entry ignores the date", func(t *testing.T) {
		latest, err := repos.StockLedger().Latest(ctx, tenantID, item.ID, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, issue.ID, latest.ID)

		_, err = repos.StockLedger().Latest(ctx, tenantID, item.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("backdated receipt is rejected", func(t *testing.T) {
		_, err := svc.ApplyStockMovement(ctx, inventory.StockMovement{
			TenantID:     tenantID,
			ItemID:       item.ID,
			WarehouseID:  warehouseID,
			PostingDate:  date(2024, 3, 1),
			QtyChange:    decimal.NewFromInt(1),
			IncomingRate: decimal.NewFromInt(7),
		})
		assert.ErrorIs(t, err, inventory.ErrBackdatedMovement)
	})

	t.Run("issuing more than is on hand fails", func(t *testing.T) {
		_, err := svc.ApplyStockMovement(ctx, inventory.StockMovement{
			TenantID:    tenantID,
			ItemID:      item.ID,
			WarehouseID: warehouseID,
			PostingDate: date(2024, 3, 3),
			QtyChange:   decimal.NewFromInt(-6),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientCostLayers)
	})
}

func TestGormBaseDocumentRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	tenantID, documentID := uuid.New(), uuid.New()
	lines := []inventory.ReceiptLine{
		{LineID: uuid.New(), ItemID: uuid.New(), WarehouseID: uuid.New(), Qty: decimal.NewFromInt(10), BaseValue: decimal.NewFromInt(100)},
		{LineID: uuid.New(), ItemID: uuid.New(), WarehouseID: uuid.New(), Qty: decimal.NewFromInt(30), BaseValue: decimal.NewFromInt(300)},
	}
	require.NoError(t, repos.BaseDocuments().SaveReceiptLines(ctx, tenantID, documentID, lines...))

	t.Run("lists lines in document order", func(t *testing.T) {
		got, err := repos.BaseDocuments().ListReceiptLines(ctx, tenantID, documentID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, lines[0].LineID, got[0].LineID)
		assert.Equal(t, "300", got[1].BaseValue.String())
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := repos.BaseDocuments().ListReceiptLines(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("landed cost allocated by value is recorded", func(t *testing.T) {
		svc := appinventory.NewLandedCostService(repos.BaseDocuments(), repos.BaseDocuments())
		_, err := svc.AllocateLandedCost(ctx, tenantID, documentID,
			[]inventory.LandedCostLine{{Description: "freight", Amount: decimal.NewFromInt(40)}},
			inventory.AllocateByValue)
		require.NoError(t, err)

		applied, err := repos.BaseDocuments().LandedCosts(ctx, tenantID, documentID)
		require.NoError(t, err)
		require.Len(t, applied, 2)
		total := applied[0].AllocatedAmount.Add(applied[1].AllocatedAmount)
		assert.Equal(t, "40", total.String())
	})
}
