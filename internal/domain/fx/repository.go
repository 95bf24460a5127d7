package fx

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RateRepository stores exchange rates
type RateRepository interface {
	// FindRate returns the rate for the exact key, or shared.ErrNotFound. No rate is ever derived.
	FindRate(ctx context.Context, key RateKey) (*Rate, error)

	// UpsertRate inserts or replaces the rate stored under its key
	UpsertRate(ctx context.Context, rate *Rate) error
}

// MonetaryBalanceRepository supplies balance snapshots for revaluation
type MonetaryBalanceRepository interface {
	// ListMonetaryBalances returns per-account foreign balances as of cutoff.
	// An empty currency filter means all currencies.
	ListMonetaryBalances(ctx context.Context, tenantID, entityID uuid.UUID, cutoff time.Time, currencies []valueobject.Currency) ([]MonetaryBalance, error)
}
