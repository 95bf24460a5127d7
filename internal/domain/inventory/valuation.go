package inventory

import (
	"fmt"
	"sort"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is raised for movements that do not change stock
var ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be non-zero")

// ErrBackdatedMovement is raised for a FIFO movement dated before the item's
// latest stock ledger entry in the warehouse
var ErrBackdatedMovement = shared.NewDomainError("BACKDATED_MOVEMENT", "FIFO movements cannot be dated before the latest stock ledger entry")

// ValuationMethodCode is the persisted code of a valuation method
type ValuationMethodCode string

const (
	ValuationMovingAverage ValuationMethodCode = "MOVING_AVERAGE"
	ValuationFIFO          ValuationMethodCode = "FIFO"
)

// ValuationState is the running balance of an item in a warehouse
type ValuationState struct {
	Qty   decimal.Decimal
	Rate  decimal.Decimal
	Value decimal.Decimal
}

// ZeroState is the state of an item/warehouse with no prior movement
func ZeroState() ValuationState {
	return ValuationState{Qty: decimal.Zero, Rate: decimal.Zero, Value: decimal.Zero}
}

// LayerConsumption records how much of a cost layer an issue consumed
type LayerConsumption struct {
	Layer    *CostLayer
	Qty      decimal.Decimal
	UnitCost decimal.Decimal
}

// ValuationOutcome is the result of valuing one movement against the prior state
type ValuationOutcome struct {
	State ValuationState
	// IssueCost is the value taken out of stock by an issue (positive), zero for receipts
	IssueCost decimal.Decimal
	// NewLayer is the layer a FIFO receipt opens
	NewLayer *CostLayer
	// Consumed lists the layers a FIFO issue drew down, oldest first
	Consumed []LayerConsumption
}

// ValuationMethod values stock movements. The set of methods is closed:
// only this package can implement it.
type ValuationMethod interface {
	Code() ValuationMethodCode
	// Apply values movement qtyChange at incomingRate from prev. layers are the open
	// FIFO layers of the item/warehouse; methods that do not use layers ignore them.
	Apply(prev ValuationState, layers []*CostLayer, qtyChange, incomingRate decimal.Decimal) (ValuationOutcome, error)
	sealed()
}

// ResolveValuationMethod returns the method for a code
func ResolveValuationMethod(code ValuationMethodCode) (ValuationMethod, error) {
	switch code {
	case ValuationMovingAverage:
		return MovingAverage{}, nil
	case ValuationFIFO:
		return FIFO{}, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedValuationMethod, code)
}

// MovingAverage values stock at a running weighted average rate
type MovingAverage struct{}

func (MovingAverage) sealed() {}

// Code returns MOVING_AVERAGE
func (MovingAverage) Code() ValuationMethodCode {
	return ValuationMovingAverage
}

// Apply revalues the average on receipt and issues at the prior rate
func (MovingAverage) Apply(prev ValuationState, _ []*CostLayer, qtyChange, incomingRate decimal.Decimal) (ValuationOutcome, error) {
	if qtyChange.IsZero() {
		return ValuationOutcome{}, ErrInvalidQuantity
	}
	newQty := prev.Qty.Add(qtyChange)

	if qtyChange.IsPositive() {
		newValue := prev.Value.Add(qtyChange.Mul(incomingRate))
		newRate := decimal.Zero
		if !newQty.IsZero() {
			newRate = newValue.Div(newQty)
		}
		return ValuationOutcome{
			State:     ValuationState{Qty: newQty, Rate: newRate, Value: newValue},
			IssueCost: decimal.Zero,
		}, nil
	}

	issued := qtyChange.Mul(prev.Rate)
	return ValuationOutcome{
		State:     ValuationState{Qty: newQty, Rate: prev.Rate, Value: prev.Value.Add(issued)},
		IssueCost: issued.Neg(),
	}, nil
}

// FIFO values stock as a queue of cost layers consumed oldest first
type FIFO struct{}

func (FIFO) sealed() {}

// Code returns FIFO
func (FIFO) Code() ValuationMethodCode {
	return ValuationFIFO
}

// Apply opens a layer on receipt or consumes layers oldest-first on issue.
// An issue the open layers cannot cover fails with shared.ErrInsufficientCostLayers.
func (FIFO) Apply(prev ValuationState, layers []*CostLayer, qtyChange, incomingRate decimal.Decimal) (ValuationOutcome, error) {
	if qtyChange.IsZero() {
		return ValuationOutcome{}, ErrInvalidQuantity
	}
	open := SortLayers(layers)
	newQty := prev.Qty.Add(qtyChange)

	if qtyChange.IsPositive() {
		layer := &CostLayer{OriginalQty: qtyChange, RemainingQty: qtyChange, UnitCost: incomingRate}
		value := sumLayers(open).Add(layer.Value())
		return ValuationOutcome{
			State:     ValuationState{Qty: newQty, Rate: rateOf(value, newQty), Value: value},
			IssueCost: decimal.Zero,
			NewLayer:  layer,
		}, nil
	}

	needed := qtyChange.Neg()
	available := decimal.Zero
	for _, l := range open {
		available = available.Add(l.RemainingQty)
	}
	if available.LessThan(needed) {
		return ValuationOutcome{}, fmt.Errorf("%w: issue %s, available %s",
			shared.ErrInsufficientCostLayers, needed.String(), available.String())
	}

	consumed := make([]LayerConsumption, 0)
	issueCost := decimal.Zero
	remaining := needed
	for _, l := range open {
		if remaining.IsZero() {
			break
		}
		if !l.RemainingQty.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, l.RemainingQty)
		l.RemainingQty = l.RemainingQty.Sub(take)
		issueCost = issueCost.Add(take.Mul(l.UnitCost))
		remaining = remaining.Sub(take)
		consumed = append(consumed, LayerConsumption{Layer: l, Qty: take, UnitCost: l.UnitCost})
	}

	value := sumLayers(open)
	return ValuationOutcome{
		State:     ValuationState{Qty: newQty, Rate: rateOf(value, newQty), Value: value},
		IssueCost: issueCost,
		Consumed:  consumed,
	}, nil
}

func sumLayers(layers []*CostLayer) decimal.Decimal {
	total := decimal.Zero
	for _, l := range layers {
		total = total.Add(l.Value())
	}
	return total
}

func rateOf(value, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return value.Div(qty)
}

// SortLayers orders layers oldest first: by posting date, then by creation sequence.
// The input slice is not modified; the layer pointers are shared.
func SortLayers(layers []*CostLayer) []*CostLayer {
	sorted := make([]*CostLayer, len(layers))
	copy(sorted, layers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PostingDate.Equal(sorted[j].PostingDate) {
			return sorted[i].PostingDate.Before(sorted[j].PostingDate)
		}
		return sorted[i].Sequence < sorted[j].Sequence
	})
	return sorted
}
