package fx

import (
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonetaryBalance is a snapshot of an account balance held in a foreign
// currency together with its currently booked base-currency equivalent.
type MonetaryBalance struct {
	AccountID         uuid.UUID
	Currency          valueobject.Currency
	BalanceForeign    decimal.Decimal
	BalanceBaseBefore decimal.Decimal
	IsMonetary        bool
}

// Revaluable reports whether the balance takes part in a revaluation run
func (b MonetaryBalance) Revaluable(base valueobject.Currency) bool {
	return b.IsMonetary && b.Currency != base && !b.BalanceForeign.IsZero()
}

// Revalue computes the base amount at the closing rate and the delta against the booked amount
func (b MonetaryBalance) Revalue(closingRate decimal.Decimal) (after, delta decimal.Decimal) {
	after = b.BalanceForeign.Mul(closingRate)
	return after, after.Sub(b.BalanceBaseBefore)
}
