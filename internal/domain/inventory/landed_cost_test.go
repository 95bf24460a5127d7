package inventory

import (
	"testing"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receipt(qty, value string) ReceiptLine {
	return ReceiptLine{LineID: uuid.New(), ItemID: uuid.New(), WarehouseID: uuid.New(), Qty: d(qty), BaseValue: d(value)}
}

func sumAllocated(allocs []LandedCostAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.AllocatedAmount)
	}
	return total
}

func TestAllocateLandedCost_ByValue(t *testing.T) {
	costs := []LandedCostLine{{Amount: d("60")}, {Amount: d("40")}}
	lines := []ReceiptLine{receipt("1", "300"), receipt("10", "100")}

	res, err := AllocateLandedCost(costs, lines, AllocateByValue)
	require.NoError(t, err)

	assert.Equal(t, AllocateByValue, res.Method)
	assertDecimal(t, "100", res.TotalCost)
	assertDecimal(t, "75", res.Allocations[0].AllocatedAmount)
	assertDecimal(t, "25", res.Allocations[1].AllocatedAmount)
}

func TestAllocateLandedCost_ByValueFallsBackToQty(t *testing.T) {
	lines := []ReceiptLine{receipt("1", "0"), receipt("3", "0")}

	res, err := AllocateLandedCost([]LandedCostLine{{Amount: d("100")}}, lines, AllocateByValue)
	require.NoError(t, err)

	assert.Equal(t, AllocateByQty, res.Method)
	assertDecimal(t, "25", res.Allocations[0].AllocatedAmount)
	assertDecimal(t, "75", res.Allocations[1].AllocatedAmount)
}

func TestAllocateLandedCost_RemainderGoesToLastNonZeroLine(t *testing.T) {
	lines := []ReceiptLine{receipt("1", "1"), receipt("1", "1"), receipt("1", "1"), receipt("0", "0")}

	res, err := AllocateLandedCost([]LandedCostLine{{Amount: d("100")}}, lines, AllocateByQty)
	require.NoError(t, err)

	require.Len(t, res.Allocations, 4)
	assert.True(t, sumAllocated(res.Allocations).Equal(d("100")), "allocations must sum exactly to the total")
	assert.True(t, res.Allocations[3].AllocatedAmount.IsZero())
	assert.True(t, res.Allocations[2].AllocatedAmount.GreaterThan(res.Allocations[0].AllocatedAmount))
}

func TestAllocateLandedCost_SharesKeepTheCostScale(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		lines  []ReceiptLine
		want   []string
		places int32
	}{
		{
			name:   "thirds of a two-place total",
			total:  "100.00",
			lines:  []ReceiptLine{receipt("1", "1"), receipt("1", "1"), receipt("1", "1")},
			want:   []string{"33.33", "33.33", "33.34"},
			places: 2,
		},
		{
			name:   "integer total still gets cents",
			total:  "10",
			lines:  []ReceiptLine{receipt("3", "0"), receipt("3", "0"), receipt("1", "0")},
			want:   []string{"4.28", "4.28", "1.44"},
			places: 2,
		},
		{
			name:   "four-place total keeps four places",
			total:  "1.0000",
			lines:  []ReceiptLine{receipt("1", "0"), receipt("1", "0"), receipt("1", "0")},
			want:   []string{"0.3333", "0.3333", "0.3334"},
			places: 4,
		},
		{
			name:   "cent total over more lines than cents",
			total:  "0.01",
			lines:  []ReceiptLine{receipt("1", "0"), receipt("1", "0"), receipt("1", "0")},
			want:   []string{"0", "0", "0.01"},
			places: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := AllocateLandedCost([]LandedCostLine{{Amount: d(tt.total)}}, tt.lines, AllocateByQty)
			require.NoError(t, err)
			require.Len(t, res.Allocations, len(tt.want))

			for i, want := range tt.want {
				got := res.Allocations[i].AllocatedAmount
				assertDecimal(t, want, got)
				assert.GreaterOrEqual(t, got.Exponent(), -tt.places, "share %s carries more than %d places", got, tt.places)
				assert.False(t, got.IsNegative())
			}
			assert.True(t, sumAllocated(res.Allocations).Equal(d(tt.total)), "allocations must sum exactly to the total")
		})
	}
}

func TestAllocateLandedCost_ZeroCases(t *testing.T) {
	t.Run("zero total cost returns nothing", func(t *testing.T) {
		res, err := AllocateLandedCost([]LandedCostLine{{Amount: d("0")}}, []ReceiptLine{receipt("1", "1")}, AllocateByQty)
		require.NoError(t, err)
		assert.Empty(t, res.Allocations)
	})

	t.Run("zero total qty gives every line zero", func(t *testing.T) {
		res, err := AllocateLandedCost([]LandedCostLine{{Amount: d("10")}}, []ReceiptLine{receipt("0", "0"), receipt("0", "0")}, AllocateByQty)
		require.NoError(t, err)
		require.Len(t, res.Allocations, 2)
		for _, a := range res.Allocations {
			assert.True(t, a.AllocatedAmount.IsZero())
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := AllocateLandedCost(nil, nil, "BY_WEIGHT")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
