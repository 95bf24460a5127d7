package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DecimalString is a base-10 decimal carried as text (command-line input,
// wire payloads). It is never converted through binary floating point.
type DecimalString string

// Decimal parses the string into an exact decimal
func (s DecimalString) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", string(s), err)
	}
	return d, nil
}

// TruncateMoney drops digits beyond MoneyScale, rounding toward zero
func TruncateMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundDown(MoneyScale)
}

// AmountScale is the number of decimal places d carries, never less than MoneyScale
func AmountScale(d decimal.Decimal) int32 {
	if places := -d.Exponent(); places > MoneyScale {
		return places
	}
	return MoneyScale
}
