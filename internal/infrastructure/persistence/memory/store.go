// Package memory holds in-memory implementations of every kernel port. They
// back the service tests; production uses the gorm adapters.
package memory

import (
	"sync"

	"github.com/erp/kernel/internal/domain/asset"
	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/google/uuid"
)

// Store is the shared state behind the repositories. All repositories created
// from one Store observe each other's writes.
type Store struct {
	mu sync.RWMutex

	accounts map[uuid.UUID]*ledger.Account
	periods  map[uuid.UUID]*ledger.Period
	journals []*ledger.JournalEntry

	rates    map[fx.RateKey]*fx.Rate
	balances []fx.MonetaryBalance

	items        map[uuid.UUID]*inventory.StockItem
	sles         []*inventory.StockLedgerEntry
	layers       map[uuid.UUID]*inventory.CostLayer
	receiptLines map[uuid.UUID][]inventory.ReceiptLine
	landedCosts  map[uuid.UUID][]inventory.LandedCostAllocation

	assets    map[uuid.UUID]*asset.Asset
	schedules map[uuid.UUID][]asset.ScheduleLine

	invoices    map[uuid.UUID]*subledger.Invoice
	payments    map[uuid.UUID]*subledger.Payment
	allocations []*subledger.PaymentAllocation
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]*ledger.Account),
		periods:      make(map[uuid.UUID]*ledger.Period),
		rates:        make(map[fx.RateKey]*fx.Rate),
		items:        make(map[uuid.UUID]*inventory.StockItem),
		layers:       make(map[uuid.UUID]*inventory.CostLayer),
		receiptLines: make(map[uuid.UUID][]inventory.ReceiptLine),
		landedCosts:  make(map[uuid.UUID][]inventory.LandedCostAllocation),
		assets:       make(map[uuid.UUID]*asset.Asset),
		schedules:    make(map[uuid.UUID][]asset.ScheduleLine),
		invoices:     make(map[uuid.UUID]*subledger.Invoice),
		payments:     make(map[uuid.UUID]*subledger.Payment),
	}
}

// AddAccounts seeds chart-of-accounts entries
func (s *Store) AddAccounts(accounts ...*ledger.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		cp := *a
		s.accounts[a.ID] = &cp
	}
}

// AddPeriods seeds accounting periods
func (s *Store) AddPeriods(periods ...*ledger.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range periods {
		cp := *p
		s.periods[p.ID] = &cp
	}
}

// AddMonetaryBalances seeds revaluation snapshots
func (s *Store) AddMonetaryBalances(balances ...fx.MonetaryBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = append(s.balances, balances...)
}

// AddStockItems seeds item metadata
func (s *Store) AddStockItems(items ...*inventory.StockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		cp := *it
		s.items[it.ID] = &cp
	}
}

// AddReceiptLines seeds the receiving lines of a base document
func (s *Store) AddReceiptLines(documentID uuid.UUID, lines ...inventory.ReceiptLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiptLines[documentID] = append(s.receiptLines[documentID], lines...)
}

// AddInvoices seeds sub-ledger invoices
func (s *Store) AddInvoices(invoices ...*subledger.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range invoices {
		cp := *inv
		s.invoices[inv.ID] = &cp
	}
}

// AddPayments seeds payments
func (s *Store) AddPayments(payments ...*subledger.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range payments {
		cp := *p
		s.payments[p.ID] = &cp
	}
}

// PostedJournals returns copies of every posted journal in posting order
func (s *Store) PostedJournals() []ledger.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.JournalEntry, len(s.journals))
	for i, j := range s.journals {
		out[i] = *j.Clone()
	}
	return out
}

// LandedCosts returns the allocations applied to a base document
func (s *Store) LandedCosts(documentID uuid.UUID) []inventory.LandedCostAllocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]inventory.LandedCostAllocation(nil), s.landedCosts[documentID]...)
}

// Allocations returns every saved payment allocation
func (s *Store) Allocations() []subledger.PaymentAllocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]subledger.PaymentAllocation, len(s.allocations))
	for i, a := range s.allocations {
		out[i] = *a
	}
	return out
}
