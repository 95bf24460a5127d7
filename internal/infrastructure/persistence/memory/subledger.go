package memory

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository implements subledger.InvoiceRepository,
// subledger.AgingInvoiceViewRepository and subledger.SubLedgerControlBalanceRepository
type InvoiceRepository struct{ s *Store }

// Invoices returns the store's invoice repository
func (s *Store) Invoices() *InvoiceRepository { return &InvoiceRepository{s} }

// FindOpenByParty returns copies of the party's open invoices in one currency
func (r *InvoiceRepository) FindOpenByParty(_ context.Context, tenantID uuid.UUID, typ subledger.Type, partyID uuid.UUID, currency valueobject.Currency) ([]*subledger.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*subledger.Invoice, 0)
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID || inv.Type != typ || inv.PartyID != partyID || inv.Currency != currency || !inv.IsOpen() {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	subledger.SortFIFO(out)
	return out, nil
}

// FindByIDs returns copies in the order of ids
func (r *InvoiceRepository) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*subledger.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*subledger.Invoice, 0, len(ids))
	for _, id := range ids {
		inv, ok := r.s.invoices[id]
		if !ok || inv.TenantID != tenantID {
			return nil, shared.ErrNotFound
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

// Save stores the invoices
func (r *InvoiceRepository) Save(_ context.Context, invoices ...*subledger.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range invoices {
		cp := *inv
		r.s.invoices[inv.ID] = &cp
	}
	return nil
}

// ListOpenInvoices returns open invoices dated on or before asOf
func (r *InvoiceRepository) ListOpenInvoices(_ context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]subledger.AgingInvoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	on := shared.DateOf(asOf)
	out := make([]subledger.AgingInvoice, 0)
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID || inv.Type != typ || !inv.IsOpen() || inv.InvoiceDate.After(on) {
			continue
		}
		out = append(out, subledger.AgingInvoice{
			InvoiceID:   inv.ID,
			PartyID:     inv.PartyID,
			Currency:    inv.Currency,
			DueDate:     inv.DueDate,
			OpenBalance: inv.OpenBalance,
		})
	}
	return out, nil
}

// SumOpenByControlAccount sums base open balances per control account
func (r *InvoiceRepository) SumOpenByControlAccount(_ context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]subledger.OpenBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	on := shared.DateOf(asOf)
	sums := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0)
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID || inv.Type != typ || !inv.IsOpen() || inv.InvoiceDate.After(on) {
			continue
		}
		if _, ok := sums[inv.ControlAccountID]; !ok {
			order = append(order, inv.ControlAccountID)
		}
		sums[inv.ControlAccountID] = sums[inv.ControlAccountID].Add(inv.BaseOpenBalance())
	}
	out := make([]subledger.OpenBalance, 0, len(order))
	for _, id := range order {
		out = append(out, subledger.OpenBalance{ControlAccountID: id, Amount: sums[id]})
	}
	return out, nil
}

// PaymentRepository implements subledger.PaymentRepository
type PaymentRepository struct{ s *Store }

// Payments returns the store's payment repository
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{s} }

// FindByID returns a copy of the payment
func (r *PaymentRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*subledger.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// AllocatedAmount sums the payment's saved allocations
func (r *PaymentRepository) AllocatedAmount(_ context.Context, tenantID, paymentID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, a := range r.s.allocations {
		if a.TenantID == tenantID && a.PaymentID == paymentID {
			total = total.Add(a.AppliedAmount)
		}
	}
	return total, nil
}

// SaveAllocations appends copies of the allocations
func (r *PaymentRepository) SaveAllocations(_ context.Context, allocations ...*subledger.PaymentAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range allocations {
		cp := *a
		r.s.allocations = append(r.s.allocations, &cp)
	}
	return nil
}

// ControlBalanceRepository implements subledger.ControlAccountBalanceRepository
// from the store's posted journals
type ControlBalanceRepository struct{ s *Store }

// ControlBalances returns the store's control balance repository
func (s *Store) ControlBalances() *ControlBalanceRepository { return &ControlBalanceRepository{s} }

// ListControlBalances returns each control account's balance on its normal side
func (r *ControlBalanceRepository) ListControlBalances(_ context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]subledger.ControlBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]subledger.ControlBalance, 0)
	for _, a := range r.s.accounts {
		if a.TenantID != tenantID || !a.IsControlAccount || a.SubLedgerType != typ {
			continue
		}
		balance := r.s.accountBalance(tenantID, a.ID, asOf)
		if a.NormalBalance == ledger.BalanceSideCredit {
			balance = balance.Neg()
		}
		out = append(out, subledger.ControlBalance{AccountID: a.ID, AccountCode: a.Code, Balance: balance})
	}
	return out, nil
}
