package memory

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository implements ledger.AccountRepository
type AccountRepository struct{ s *Store }

// Accounts returns the store's account repository
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s} }

// FindByID returns a copy of the account
func (r *AccountRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok || a.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// PeriodRepository implements ledger.PeriodRepository
type PeriodRepository struct{ s *Store }

// Periods returns the store's period repository
func (s *Store) Periods() *PeriodRepository { return &PeriodRepository{s} }

// FindByDate returns the entity's period containing date
func (r *PeriodRepository) FindByDate(_ context.Context, tenantID, entityID uuid.UUID, date time.Time) (*ledger.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.periods {
		if p.TenantID == tenantID && p.EntityID == entityID && p.Contains(date) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindByID returns a copy of the period
func (r *PeriodRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*ledger.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.periods[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Save stores the period
func (r *PeriodRepository) Save(_ context.Context, period *ledger.Period) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *period
	r.s.periods[period.ID] = &cp
	return nil
}

// JournalRepository implements ledger.JournalRepository and ledger.BalanceReader
type JournalRepository struct{ s *Store }

// Journals returns the store's journal repository
func (s *Store) Journals() *JournalRepository { return &JournalRepository{s} }

// SavePosted appends a copy of the journal
func (r *JournalRepository) SavePosted(_ context.Context, journal *ledger.JournalEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, j := range r.s.journals {
		if j.ID == journal.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.s.journals = append(r.s.journals, journal.Clone())
	return nil
}

// FindByID returns a copy of the journal
func (r *JournalRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*ledger.JournalEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, j := range r.s.journals {
		if j.ID == id && j.TenantID == tenantID {
			return j.Clone(), nil
		}
	}
	return nil, shared.ErrNotFound
}

// AccountBalance sums debit - credit over posted lines dated on or before asOf
func (r *JournalRepository) AccountBalance(_ context.Context, tenantID, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.accountBalance(tenantID, accountID, asOf), nil
}

// accountBalance must be called with the lock held
func (s *Store) accountBalance(tenantID, accountID uuid.UUID, asOf time.Time) decimal.Decimal {
	on := shared.DateOf(asOf)
	balance := decimal.Zero
	for _, j := range s.journals {
		if j.TenantID != tenantID || j.JournalDate.After(on) {
			continue
		}
		for _, l := range j.Lines {
			if l.AccountID == accountID {
				balance = balance.Add(l.Debit).Sub(l.Credit)
			}
		}
	}
	return balance
}
