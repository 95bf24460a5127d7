package inventory

import (
	"fmt"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationMethod decides how landed cost is spread across receipt lines
type AllocationMethod string

const (
	AllocateByValue AllocationMethod = "BY_VALUE"
	AllocateByQty   AllocationMethod = "BY_QTY"
)

// IsValid checks if the allocation method is valid
func (m AllocationMethod) IsValid() bool {
	return m == AllocateByValue || m == AllocateByQty
}

// LandedCostLine is one ancillary cost (freight, duty, ...)
type LandedCostLine struct {
	Description      string
	Amount           decimal.Decimal
	ExpenseAccountID uuid.UUID
}

// ReceiptLine is a line of the base receiving document
type ReceiptLine struct {
	LineID      uuid.UUID
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Qty         decimal.Decimal
	BaseValue   decimal.Decimal
}

// LandedCostAllocation is the share of landed cost assigned to a receipt line
type LandedCostAllocation struct {
	LineID          uuid.UUID
	ItemID          uuid.UUID
	WarehouseID     uuid.UUID
	Qty             decimal.Decimal
	BaseValue       decimal.Decimal
	AllocatedAmount decimal.Decimal
}

// AllocationResult holds the allocations and the method that was actually used
type AllocationResult struct {
	Method      AllocationMethod
	TotalCost   decimal.Decimal
	Allocations []LandedCostAllocation
}

// AllocateLandedCost spreads the summed landed cost over the receipt lines.
// BY_VALUE falls back to BY_QTY when the total base value is zero; BY_QTY
// assigns zero everywhere when the total quantity is zero. Each share is
// truncated to the scale of the total (at least MoneyScale) and the last line
// with a non-zero weight absorbs the remainder, so the shares sum to the total.
func AllocateLandedCost(costs []LandedCostLine, lines []ReceiptLine, method AllocationMethod) (AllocationResult, error) {
	if !method.IsValid() {
		return AllocationResult{}, fmt.Errorf("%w: allocation method %q", shared.ErrInvalidInput, method)
	}

	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c.Amount)
	}
	result := AllocationResult{Method: method, TotalCost: total, Allocations: []LandedCostAllocation{}}
	if total.IsZero() || len(lines) == 0 {
		return result, nil
	}

	weight := func(l ReceiptLine) decimal.Decimal { return l.BaseValue }
	if method == AllocateByValue && sumBy(lines, weight).IsZero() {
		result.Method = AllocateByQty
	}
	if result.Method == AllocateByQty {
		weight = func(l ReceiptLine) decimal.Decimal { return l.Qty }
	}
	totalWeight := sumBy(lines, weight)
	scale := valueobject.AmountScale(total)

	allocated := decimal.Zero
	lastNonZero := -1
	for _, l := range lines {
		share := decimal.Zero
		if !totalWeight.IsZero() {
			share = total.Mul(weight(l)).Div(totalWeight).RoundDown(scale)
		}
		if !weight(l).IsZero() {
			lastNonZero = len(result.Allocations)
		}
		allocated = allocated.Add(share)
		result.Allocations = append(result.Allocations, LandedCostAllocation{
			LineID:          l.LineID,
			ItemID:          l.ItemID,
			WarehouseID:     l.WarehouseID,
			Qty:             l.Qty,
			BaseValue:       l.BaseValue,
			AllocatedAmount: share,
		})
	}

	if lastNonZero >= 0 {
		remainder := total.Sub(allocated)
		last := &result.Allocations[lastNonZero]
		last.AllocatedAmount = last.AllocatedAmount.Add(remainder)
	}
	return result, nil
}

func sumBy(lines []ReceiptLine, f func(ReceiptLine) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(f(l))
	}
	return total
}
