package fx

import (
	"fmt"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CalculateRealisedGainLoss returns (settlement x settlementRate) - (original x originalRate)
// in the base currency. Positive is a gain. Both amounts must be in the same currency.
func CalculateRealisedGainLoss(
	original valueobject.Money,
	originalRate decimal.Decimal,
	settlement valueobject.Money,
	settlementRate decimal.Decimal,
) (decimal.Decimal, error) {
	if original.Currency() != settlement.Currency() {
		return decimal.Zero, fmt.Errorf("%w: original %s, settlement %s",
			shared.ErrCurrencyMismatch, original.Currency(), settlement.Currency())
	}
	settled := settlement.Amount().Mul(settlementRate)
	booked := original.Amount().Mul(originalRate)
	return settled.Sub(booked), nil
}
