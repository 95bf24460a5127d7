package persistence

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates an account repository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account of the tenant
func (r *GormAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	var m models.AccountModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Save inserts or replaces chart-of-accounts entries
func (r *GormAccountRepository) Save(ctx context.Context, accounts ...*ledger.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	rows := make([]*models.AccountModel, len(accounts))
	for i, a := range accounts {
		rows[i] = models.AccountModelFromDomain(a)
	}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error)
}

// GormPeriodRepository implements ledger.PeriodRepository using GORM
type GormPeriodRepository struct {
	db *gorm.DB
}

// NewGormPeriodRepository creates a period repository
func NewGormPeriodRepository(db *gorm.DB) *GormPeriodRepository {
	return &GormPeriodRepository{db: db}
}

// FindByDate finds the entity's period whose range contains date
func (r *GormPeriodRepository) FindByDate(ctx context.Context, tenantID, entityID uuid.UUID, date time.Time) (*ledger.Period, error) {
	day := shared.DateOf(date)
	var m models.PeriodModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("entity_id = ? AND start_date <= ? AND end_date >= ?", entityID, day, day).
		Order("start_date DESC").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByID finds a period of the tenant
func (r *GormPeriodRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Period, error) {
	var m models.PeriodModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Save inserts a period or records its status transition
func (r *GormPeriodRepository) Save(ctx context.Context, period *ledger.Period) error {
	m := models.PeriodModelFromDomain(period)
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error)
}

// GormJournalRepository implements ledger.JournalRepository and
// ledger.BalanceReader using GORM. Journals are never updated or deleted.
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a journal repository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// SavePosted inserts the journal with its lines. A journal id that already
// exists is shared.ErrAlreadyExists.
func (r *GormJournalRepository) SavePosted(ctx context.Context, journal *ledger.JournalEntry) error {
	m := models.JournalEntryModelFromDomain(journal)
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// FindByID loads a journal of the tenant with its lines in line order
func (r *GormJournalRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.JournalEntry, error) {
	var m models.JournalEntryModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// AccountBalance sums debit - credit of the account's lines in journals
// dated on or before asOf
func (r *GormJournalRepository) AccountBalance(ctx context.Context, tenantID, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	return accountBalance(ctx, r.db, tenantID, accountID, asOf)
}

func accountBalance(ctx context.Context, db *gorm.DB, tenantID, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	var lines []models.JournalLineModel
	err := db.WithContext(ctx).
		Table("gl_journal_lines AS l").
		Select("l.debit, l.credit").
		Joins("JOIN gl_journal_entries AS j ON j.id = l.journal_id").
		Where("l.tenant_id = ? AND l.account_id = ? AND j.journal_date <= ?", tenantID, accountID, shared.DateOf(asOf)).
		Find(&lines).Error
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, l := range lines {
		balance = balance.Add(l.Debit).Sub(l.Credit)
	}
	return balance, nil
}

var (
	_ ledger.AccountRepository = (*GormAccountRepository)(nil)
	_ ledger.PeriodRepository  = (*GormPeriodRepository)(nil)
	_ ledger.JournalRepository = (*GormJournalRepository)(nil)
	_ ledger.BalanceReader     = (*GormJournalRepository)(nil)
)
