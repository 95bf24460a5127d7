package models

import (
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for AR and AP invoices
type InvoiceModel struct {
	ID               uuid.UUID               `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID               `gorm:"type:uuid;not null;index:idx_sl_invoice_party,priority:1"`
	Type             subledger.Type          `gorm:"type:varchar(4);not null;index:idx_sl_invoice_party,priority:2"`
	PartyID          uuid.UUID               `gorm:"type:uuid;not null;index:idx_sl_invoice_party,priority:3"`
	InvoiceNumber    string                  `gorm:"type:varchar(64);not null"`
	InvoiceDate      time.Time               `gorm:"type:date;not null"`
	DueDate          time.Time               `gorm:"type:date;not null"`
	Currency         valueobject.Currency    `gorm:"type:char(3);not null"`
	Amount           decimal.Decimal         `gorm:"type:numeric(20,6);not null"`
	OpenBalance      decimal.Decimal         `gorm:"type:numeric(20,6);not null"`
	ExchangeRate     decimal.Decimal         `gorm:"type:numeric(24,10);not null"`
	Status           subledger.InvoiceStatus `gorm:"type:varchar(10);not null;index"`
	ControlAccountID uuid.UUID               `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "sl_invoices"
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *subledger.Invoice {
	return &subledger.Invoice{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Type:             m.Type,
		PartyID:          m.PartyID,
		InvoiceNumber:    m.InvoiceNumber,
		InvoiceDate:      shared.DateOf(m.InvoiceDate),
		DueDate:          shared.DateOf(m.DueDate),
		Currency:         m.Currency,
		Amount:           m.Amount,
		OpenBalance:      m.OpenBalance,
		ExchangeRate:     m.ExchangeRate,
		Status:           m.Status,
		ControlAccountID: m.ControlAccountID,
	}
}

// InvoiceModelFromDomain creates a model from a domain Invoice
func InvoiceModelFromDomain(i *subledger.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:               i.ID,
		TenantID:         i.TenantID,
		Type:             i.Type,
		PartyID:          i.PartyID,
		InvoiceNumber:    i.InvoiceNumber,
		InvoiceDate:      shared.DateOf(i.InvoiceDate),
		DueDate:          shared.DateOf(i.DueDate),
		Currency:         i.Currency,
		Amount:           i.Amount,
		OpenBalance:      i.OpenBalance,
		ExchangeRate:     i.ExchangeRate,
		Status:           i.Status,
		ControlAccountID: i.ControlAccountID,
	}
}

// PaymentModel is the persistence model for receipts and disbursements
type PaymentModel struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type        subledger.Type       `gorm:"type:varchar(4);not null"`
	PartyID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	PaymentDate time.Time            `gorm:"type:date;not null"`
	Currency    valueobject.Currency `gorm:"type:char(3);not null"`
	Amount      decimal.Decimal      `gorm:"type:numeric(20,6);not null"`
	Reference   string               `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "sl_payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *subledger.Payment {
	return &subledger.Payment{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Type:        m.Type,
		PartyID:     m.PartyID,
		PaymentDate: shared.DateOf(m.PaymentDate),
		Currency:    m.Currency,
		Amount:      m.Amount,
		Reference:   m.Reference,
	}
}

// PaymentModelFromDomain creates a model from a domain Payment
func PaymentModelFromDomain(p *subledger.Payment) *PaymentModel {
	return &PaymentModel{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Type:        p.Type,
		PartyID:     p.PartyID,
		PaymentDate: shared.DateOf(p.PaymentDate),
		Currency:    p.Currency,
		Amount:      p.Amount,
		Reference:   p.Reference,
	}
}

// PaymentAllocationModel records part of a payment applied to an invoice
type PaymentAllocationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_sl_alloc_payment,priority:1"`
	PaymentID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_sl_alloc_payment,priority:2"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AppliedAmount decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	AllocatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "sl_payment_allocations"
}

// ToDomain converts the model to a domain PaymentAllocation
func (m *PaymentAllocationModel) ToDomain() *subledger.PaymentAllocation {
	return &subledger.PaymentAllocation{
		ID:            m.ID,
		TenantID:      m.TenantID,
		PaymentID:     m.PaymentID,
		InvoiceID:     m.InvoiceID,
		AppliedAmount: m.AppliedAmount,
		AllocatedAt:   m.AllocatedAt,
	}
}

// PaymentAllocationModelFromDomain creates a model from a domain PaymentAllocation
func PaymentAllocationModelFromDomain(a *subledger.PaymentAllocation) *PaymentAllocationModel {
	return &PaymentAllocationModel{
		ID:            a.ID,
		TenantID:      a.TenantID,
		PaymentID:     a.PaymentID,
		InvoiceID:     a.InvoiceID,
		AppliedAmount: a.AppliedAmount,
		AllocatedAt:   a.AllocatedAt,
	}
}
