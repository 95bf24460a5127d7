package fx

import (
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateType distinguishes the purpose of an exchange rate
type RateType string

const (
	RateTypeSpot    RateType = "SPOT"
	RateTypeClosing RateType = "CLOSING"
	RateTypeAverage RateType = "AVERAGE"
)

// IsValid checks if the rate type is valid
func (t RateType) IsValid() bool {
	switch t {
	case RateTypeSpot, RateTypeClosing, RateTypeAverage:
		return true
	}
	return false
}

// RateKey identifies a rate. Upserts are idempotent per key.
type RateKey struct {
	TenantID     uuid.UUID
	FromCurrency valueobject.Currency
	ToCurrency   valueobject.Currency
	RateType     RateType
	RateDate     time.Time
}

// Normalized returns the key with its date truncated to the calendar day
func (k RateKey) Normalized() RateKey {
	k.RateDate = shared.DateOf(k.RateDate)
	return k
}

// Rate is units of ToCurrency per unit of FromCurrency
type Rate struct {
	RateKey
	Rate   decimal.Decimal
	Source string
}

// NewRate validates and creates a rate
func NewRate(key RateKey, rate decimal.Decimal, source string) (*Rate, error) {
	if key.FromCurrency == "" || key.ToCurrency == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Rate currencies are required")
	}
	if key.FromCurrency == key.ToCurrency {
		return nil, shared.NewDomainError("INVALID_INPUT", "Rate currencies must differ")
	}
	if !key.RateType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid rate type: "+string(key.RateType))
	}
	if !rate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Rate must be positive")
	}
	return &Rate{RateKey: key.Normalized(), Rate: rate, Source: source}, nil
}
