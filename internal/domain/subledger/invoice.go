package subledger

import (
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type selects receivables or payables
type Type = ledger.SubLedgerType

const (
	TypeAR = ledger.SubLedgerAR
	TypeAP = ledger.SubLedgerAP
)

// ValidType reports whether t names a sub-ledger
func ValidType(t Type) bool {
	return t == TypeAR || t == TypeAP
}

// InvoiceStatus tracks settlement progress
type InvoiceStatus string

const (
	InvoiceStatusOpen    InvoiceStatus = "OPEN"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Invoice is an AR or AP document bound to a GL control account.
// OpenBalance only ever decreases.
type Invoice struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Type          Type
	PartyID       uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	Currency      valueobject.Currency
	Amount        decimal.Decimal
	OpenBalance   decimal.Decimal
	// ExchangeRate converts the document currency into base currency
	ExchangeRate     decimal.Decimal
	Status           InvoiceStatus
	ControlAccountID uuid.UUID
}

// IsOpen returns true while an open balance remains
func (i *Invoice) IsOpen() bool {
	return i.Status != InvoiceStatusPaid && i.OpenBalance.IsPositive()
}

// BaseOpenBalance returns the open balance in base currency
func (i *Invoice) BaseOpenBalance() decimal.Decimal {
	if i.ExchangeRate.IsZero() {
		return i.OpenBalance
	}
	return i.OpenBalance.Mul(i.ExchangeRate)
}

// ApplyPayment reduces the open balance and advances the status
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Applied amount must be positive")
	}
	if amount.GreaterThan(i.OpenBalance) {
		return shared.NewDomainError("INVALID_STATE", "Applied amount exceeds invoice open balance")
	}
	i.OpenBalance = i.OpenBalance.Sub(amount)
	if i.OpenBalance.IsZero() {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartial
	}
	return nil
}

// Payment is a receipt (AR) or disbursement (AP)
type Payment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Type        Type
	PartyID     uuid.UUID
	PaymentDate time.Time
	Currency    valueobject.Currency
	Amount      decimal.Decimal
	Reference   string
}

// PaymentAllocation ties part of a payment to one invoice
type PaymentAllocation struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	PaymentID     uuid.UUID
	InvoiceID     uuid.UUID
	AppliedAmount decimal.Decimal
	AllocatedAt   time.Time
}
