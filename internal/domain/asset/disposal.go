package asset

import (
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Disposal is the valuation of an asset at its disposal date
type Disposal struct {
	NetBookValue            decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	Proceeds                decimal.Decimal
	// GainLoss is proceeds - NBV; positive is a gain
	GainLoss decimal.Decimal
}

// IsGain returns true when proceeds exceed the net book value
func (d Disposal) IsGain() bool {
	return d.GainLoss.IsPositive()
}

// ValueDisposal finds the schedule line with the greatest period end on or
// before the disposal date and derives NBV and gain/loss from it. Without such
// a line the asset was never depreciated and NBV is the original cost.
func ValueDisposal(a *Asset, schedule []ScheduleLine, disposalDate time.Time, proceeds decimal.Decimal) Disposal {
	on := shared.DateOf(disposalDate)
	nbv := a.Cost
	var best *ScheduleLine
	for i := range schedule {
		l := &schedule[i]
		if shared.DateOf(l.PeriodEnd).After(on) {
			continue
		}
		if best == nil || l.PeriodEnd.After(best.PeriodEnd) {
			best = l
		}
	}
	if best != nil {
		nbv = best.NetBookValue
	}
	return Disposal{
		NetBookValue:            nbv,
		AccumulatedDepreciation: a.Cost.Sub(nbv),
		Proceeds:                proceeds,
		GainLoss:                proceeds.Sub(nbv),
	}
}
