package memory

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RateRepository implements fx.RateRepository
type RateRepository struct{ s *Store }

// Rates returns the store's rate repository
func (s *Store) Rates() *RateRepository { return &RateRepository{s} }

// FindRate returns the rate stored under the exact key
func (r *RateRepository) FindRate(_ context.Context, key fx.RateKey) (*fx.Rate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rate, ok := r.s.rates[key.Normalized()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *rate
	return &cp, nil
}

// UpsertRate replaces the rate stored under its key
func (r *RateRepository) UpsertRate(_ context.Context, rate *fx.Rate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rate
	cp.RateKey = rate.Normalized()
	r.s.rates[cp.RateKey] = &cp
	return nil
}

// MonetaryBalanceRepository implements fx.MonetaryBalanceRepository over seeded snapshots
type MonetaryBalanceRepository struct{ s *Store }

// MonetaryBalances returns the store's monetary balance repository
func (s *Store) MonetaryBalances() *MonetaryBalanceRepository {
	return &MonetaryBalanceRepository{s}
}

// ListMonetaryBalances filters the seeded snapshots by currency. Seeded
// snapshots carry no tenant or date; they are returned for any entity and cutoff.
func (r *MonetaryBalanceRepository) ListMonetaryBalances(_ context.Context, _, _ uuid.UUID, _ time.Time, currencies []valueobject.Currency) ([]fx.MonetaryBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[valueobject.Currency]bool, len(currencies))
	for _, c := range currencies {
		wanted[c] = true
	}
	out := make([]fx.MonetaryBalance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		if len(wanted) > 0 && !wanted[b.Currency] {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
