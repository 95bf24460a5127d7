package models

import (
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateModel is the persistence model for exchange rates. The natural key is
// unique so upserts replace the stored rate.
type RateModel struct {
	TenantID     uuid.UUID            `gorm:"type:uuid;primaryKey"`
	FromCurrency valueobject.Currency `gorm:"type:char(3);primaryKey"`
	ToCurrency   valueobject.Currency `gorm:"type:char(3);primaryKey"`
	RateType     fx.RateType          `gorm:"type:varchar(10);primaryKey"`
	RateDate     time.Time            `gorm:"type:date;primaryKey"`
	Rate         decimal.Decimal      `gorm:"type:numeric(24,10);not null"`
	Source       string               `gorm:"type:varchar(100)"`
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (RateModel) TableName() string {
	return "fx_rates"
}

// ToDomain converts the model to a domain Rate
func (m *RateModel) ToDomain() *fx.Rate {
	return &fx.Rate{
		RateKey: fx.RateKey{
			TenantID:     m.TenantID,
			FromCurrency: m.FromCurrency,
			ToCurrency:   m.ToCurrency,
			RateType:     m.RateType,
			RateDate:     shared.DateOf(m.RateDate),
		},
		Rate:   m.Rate,
		Source: m.Source,
	}
}

// RateModelFromDomain creates a model from a domain Rate
func RateModelFromDomain(r *fx.Rate) *RateModel {
	key := r.Normalized()
	return &RateModel{
		TenantID:     key.TenantID,
		FromCurrency: key.FromCurrency,
		ToCurrency:   key.ToCurrency,
		RateType:     key.RateType,
		RateDate:     key.RateDate,
		Rate:         r.Rate,
		Source:       r.Source,
	}
}

// MonetaryBalanceModel is a dated snapshot of a foreign-currency account
// balance and its booked base-currency equivalent, maintained by the
// sub-ledgers that own the accounts
type MonetaryBalanceModel struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID            `gorm:"type:uuid;not null;index:idx_fx_balance_lookup,priority:1"`
	EntityID       uuid.UUID            `gorm:"type:uuid;not null;index:idx_fx_balance_lookup,priority:2"`
	AccountID      uuid.UUID            `gorm:"type:uuid;not null;index:idx_fx_balance_lookup,priority:3"`
	Currency       valueobject.Currency `gorm:"type:char(3);not null;index:idx_fx_balance_lookup,priority:4"`
	AsOf           time.Time            `gorm:"type:date;not null;index:idx_fx_balance_lookup,priority:5"`
	BalanceForeign decimal.Decimal      `gorm:"type:numeric(20,6);not null"`
	BalanceBase    decimal.Decimal      `gorm:"type:numeric(20,6);not null"`
	IsMonetary     bool                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MonetaryBalanceModel) TableName() string {
	return "fx_monetary_balances"
}

// ToDomain converts the model to a domain MonetaryBalance
func (m *MonetaryBalanceModel) ToDomain() fx.MonetaryBalance {
	return fx.MonetaryBalance{
		AccountID:         m.AccountID,
		Currency:          m.Currency,
		BalanceForeign:    m.BalanceForeign,
		BalanceBaseBefore: m.BalanceBase,
		IsMonetary:        m.IsMonetary,
	}
}
