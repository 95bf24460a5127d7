package persistence

import (
	"context"

	"github.com/erp/kernel/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope runs a unit of work inside one database transaction.
// If the function returns an error, the transaction is rolled back.
type GormTransactionScope struct {
	db    *gorm.DB
	ids   shared.IDGenerator
	clock shared.Clock
}

// NewGormTransactionScope creates a transaction scope
func NewGormTransactionScope(db *gorm.DB, ids shared.IDGenerator, clock shared.Clock) *GormTransactionScope {
	return &GormTransactionScope{db: db, ids: ids, clock: clock}
}

// Execute runs fn with repositories bound to a new transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx, s.ids, s.clock))
	})
}

// Repositories gives access to every kernel repository over one connection
// or transaction. All repositories returned share it.
type Repositories struct {
	tx    *gorm.DB
	ids   shared.IDGenerator
	clock shared.Clock
}

// NewRepositories binds the repositories to db
func NewRepositories(db *gorm.DB, ids shared.IDGenerator, clock shared.Clock) *Repositories {
	return &Repositories{tx: db, ids: ids, clock: clock}
}

// DB returns the underlying connection, for repositories owned by other packages
func (r *Repositories) DB() *gorm.DB { return r.tx }

// Accounts returns the account repository
func (r *Repositories) Accounts() *GormAccountRepository { return NewGormAccountRepository(r.tx) }

// Periods returns the period repository
func (r *Repositories) Periods() *GormPeriodRepository { return NewGormPeriodRepository(r.tx) }

// Journals returns the journal repository
func (r *Repositories) Journals() *GormJournalRepository { return NewGormJournalRepository(r.tx) }

// Rates returns the exchange rate repository
func (r *Repositories) Rates() *GormRateRepository { return NewGormRateRepository(r.tx, r.clock) }

// MonetaryBalances returns the revaluation snapshot repository
func (r *Repositories) MonetaryBalances() *GormMonetaryBalanceRepository {
	return NewGormMonetaryBalanceRepository(r.tx, r.ids)
}

// StockItems returns the stock item repository
func (r *Repositories) StockItems() *GormStockItemRepository { return NewGormStockItemRepository(r.tx) }

// StockLedger returns the stock ledger repository
func (r *Repositories) StockLedger() *GormStockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

// CostLayers returns the cost layer repository
func (r *Repositories) CostLayers() *GormCostLayerRepository { return NewGormCostLayerRepository(r.tx) }

// BaseDocuments returns the receipt line repository
func (r *Repositories) BaseDocuments() *GormBaseDocumentRepository {
	return NewGormBaseDocumentRepository(r.tx, r.ids, r.clock)
}

// Assets returns the asset repository
func (r *Repositories) Assets() *GormAssetRepository { return NewGormAssetRepository(r.tx) }

// Schedules returns the depreciation schedule repository
func (r *Repositories) Schedules() *GormScheduleRepository { return NewGormScheduleRepository(r.tx) }

// Invoices returns the invoice repository
func (r *Repositories) Invoices() *GormInvoiceRepository { return NewGormInvoiceRepository(r.tx) }

// Payments returns the payment repository
func (r *Repositories) Payments() *GormPaymentRepository { return NewGormPaymentRepository(r.tx) }

// ControlBalances returns the control account balance repository
func (r *Repositories) ControlBalances() *GormControlBalanceRepository {
	return NewGormControlBalanceRepository(r.tx)
}
