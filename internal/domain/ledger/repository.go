package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository reads chart-of-accounts entries
type AccountRepository interface {
	// FindByID returns shared.ErrNotFound when the account does not exist for the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
}

// PeriodRepository reads accounting periods. Save is used only by the closing process.
type PeriodRepository interface {
	// FindByDate returns the period of the entity containing date, or shared.ErrNotFound
	FindByDate(ctx context.Context, tenantID, entityID uuid.UUID, date time.Time) (*Period, error)

	// FindByID returns shared.ErrNotFound when the period does not exist for the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Period, error)

	// Save persists a status transition
	Save(ctx context.Context, period *Period) error
}

// JournalRepository is the append-only journal store. There is no update or delete.
type JournalRepository interface {
	// SavePosted appends a posted journal
	SavePosted(ctx context.Context, journal *JournalEntry) error

	// FindByID returns shared.ErrNotFound when the journal does not exist for the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
}

// AccountBalance is the net debit-minus-credit balance of an account
type AccountBalance struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
}

// BalanceReader computes ledger balances from posted journals
type BalanceReader interface {
	// AccountBalance returns sum(debit) - sum(credit) of posted lines dated on or before asOf
	AccountBalance(ctx context.Context, tenantID, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error)
}
