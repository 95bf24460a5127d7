package subledger

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository reads and updates sub-ledger invoices
type InvoiceRepository interface {
	// FindOpenByParty returns OPEN and PARTIAL invoices of a party in one currency
	FindOpenByParty(ctx context.Context, tenantID uuid.UUID, typ Type, partyID uuid.UUID, currency valueobject.Currency) ([]*Invoice, error)

	// FindByIDs returns the invoices in the order of ids; a missing id is shared.ErrNotFound
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Invoice, error)

	// Save persists open balance and status changes
	Save(ctx context.Context, invoices ...*Invoice) error
}

// PaymentRepository stores payments and their allocations
type PaymentRepository interface {
	// FindByID returns shared.ErrNotFound when the payment does not exist for the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// AllocatedAmount sums allocations already recorded against the payment
	AllocatedAmount(ctx context.Context, tenantID, paymentID uuid.UUID) (decimal.Decimal, error)

	// SaveAllocations appends allocations
	SaveAllocations(ctx context.Context, allocations ...*PaymentAllocation) error
}

// AgingInvoiceViewRepository lists the open invoices used for aging
type AgingInvoiceViewRepository interface {
	ListOpenInvoices(ctx context.Context, tenantID uuid.UUID, typ Type, asOf time.Time) ([]AgingInvoice, error)
}

// ControlAccountBalanceRepository reads GL balances of control accounts
type ControlAccountBalanceRepository interface {
	// ListControlBalances returns every control account of the sub-ledger type with its
	// normal-side base-currency balance as of asOf
	ListControlBalances(ctx context.Context, tenantID uuid.UUID, typ Type, asOf time.Time) ([]ControlBalance, error)
}

// SubLedgerControlBalanceRepository reads sub-ledger totals per control account
type SubLedgerControlBalanceRepository interface {
	// SumOpenByControlAccount returns base-currency open balances of invoices dated on or before asOf
	SumOpenByControlAccount(ctx context.Context, tenantID uuid.UUID, typ Type, asOf time.Time) ([]OpenBalance, error)
}
