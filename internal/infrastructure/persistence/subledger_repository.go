package persistence

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openStatuses = []subledger.InvoiceStatus{subledger.InvoiceStatusOpen, subledger.InvoiceStatusPartial}

// GormInvoiceRepository implements subledger.InvoiceRepository,
// subledger.AgingInvoiceViewRepository and
// subledger.SubLedgerControlBalanceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates an invoice repository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) open(ctx context.Context, tenantID uuid.UUID, typ subledger.Type) *gorm.DB {
	return r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("type = ? AND status IN ? AND open_balance > 0", typ, openStatuses)
}

// FindOpenByParty returns the party's open invoices in one currency, oldest due first
func (r *GormInvoiceRepository) FindOpenByParty(
	ctx context.Context,
	tenantID uuid.UUID,
	typ subledger.Type,
	partyID uuid.UUID,
	currency valueobject.Currency,
) ([]*subledger.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.open(ctx, tenantID, typ).
		Where("party_id = ? AND currency = ?", partyID, currency).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	invoices := make([]*subledger.Invoice, len(rows))
	for i := range rows {
		invoices[i] = rows[i].ToDomain()
	}
	subledger.SortFIFO(invoices)
	return invoices, nil
}

// FindByIDs returns the invoices in the order of ids
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*subledger.Invoice, error) {
	if len(ids) == 0 {
		return []*subledger.Invoice{}, nil
	}
	var rows []models.InvoiceModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.InvoiceModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	invoices := make([]*subledger.Invoice, len(ids))
	for i, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, shared.ErrNotFound
		}
		invoices[i] = m.ToDomain()
	}
	return invoices, nil
}

// Save inserts invoices or records their open balance and status
func (r *GormInvoiceRepository) Save(ctx context.Context, invoices ...*subledger.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	rows := make([]*models.InvoiceModel, len(invoices))
	for i, inv := range invoices {
		rows[i] = models.InvoiceModelFromDomain(inv)
	}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"open_balance", "status"}),
		}).
		Create(&rows).Error)
}

func (r *GormInvoiceRepository) openAsOf(ctx context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]models.InvoiceModel, error) {
	var rows []models.InvoiceModel
	err := r.open(ctx, tenantID, typ).
		Where("invoice_date <= ?", shared.DateOf(asOf)).
		Order("due_date, invoice_number").
		Find(&rows).Error
	return rows, err
}

// ListOpenInvoices returns open invoices dated on or before asOf
func (r *GormInvoiceRepository) ListOpenInvoices(ctx context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]subledger.AgingInvoice, error) {
	rows, err := r.openAsOf(ctx, tenantID, typ, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]subledger.AgingInvoice, len(rows))
	for i := range rows {
		out[i] = subledger.AgingInvoice{
			InvoiceID:   rows[i].ID,
			PartyID:     rows[i].PartyID,
			Currency:    rows[i].Currency,
			DueDate:     shared.DateOf(rows[i].DueDate),
			OpenBalance: rows[i].OpenBalance,
		}
	}
	return out, nil
}

// SumOpenByControlAccount sums base-currency open balances per control account
func (r *GormInvoiceRepository) SumOpenByControlAccount(ctx context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]subledger.OpenBalance, error) {
	rows, err := r.openAsOf(ctx, tenantID, typ, asOf)
	if err != nil {
		return nil, err
	}
	sums := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0)
	for i := range rows {
		id := rows[i].ControlAccountID
		if _, ok := sums[id]; !ok {
			order = append(order, id)
		}
		sums[id] = sums[id].Add(rows[i].ToDomain().BaseOpenBalance())
	}
	out := make([]subledger.OpenBalance, len(order))
	for i, id := range order {
		out[i] = subledger.OpenBalance{ControlAccountID: id, Amount: sums[id]}
	}
	return out, nil
}

// GormPaymentRepository implements subledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a payment repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment of the tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*subledger.Payment, error) {
	var m models.PaymentModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Save inserts payments
func (r *GormPaymentRepository) Save(ctx context.Context, payments ...*subledger.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	rows := make([]*models.PaymentModel, len(payments))
	for i, p := range payments {
		rows[i] = models.PaymentModelFromDomain(p)
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// AllocatedAmount sums the allocations recorded against the payment
func (r *GormPaymentRepository) AllocatedAmount(ctx context.Context, tenantID, paymentID uuid.UUID) (decimal.Decimal, error) {
	var rows []models.PaymentAllocationModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Select("applied_amount").
		Where("payment_id = ?", paymentID).
		Find(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range rows {
		total = total.Add(a.AppliedAmount)
	}
	return total, nil
}

// SaveAllocations appends allocations
func (r *GormPaymentRepository) SaveAllocations(ctx context.Context, allocations ...*subledger.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	rows := make([]*models.PaymentAllocationModel, len(allocations))
	for i, a := range allocations {
		rows[i] = models.PaymentAllocationModelFromDomain(a)
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// GormControlBalanceRepository implements
// subledger.ControlAccountBalanceRepository from posted journals
type GormControlBalanceRepository struct {
	db *gorm.DB
}

// NewGormControlBalanceRepository creates a control balance repository
func NewGormControlBalanceRepository(db *gorm.DB) *GormControlBalanceRepository {
	return &GormControlBalanceRepository{db: db}
}

// ListControlBalances returns each control account's balance on its normal side
func (r *GormControlBalanceRepository) ListControlBalances(ctx context.Context, tenantID uuid.UUID, typ subledger.Type, asOf time.Time) ([]subledger.ControlBalance, error) {
	var accounts []models.AccountModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("is_control_account = ? AND sub_ledger_type = ?", true, string(typ)).
		Order("code").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	out := make([]subledger.ControlBalance, 0, len(accounts))
	for _, a := range accounts {
		balance, err := accountBalance(ctx, r.db, tenantID, a.ID, asOf)
		if err != nil {
			return nil, err
		}
		if a.NormalBalance == ledger.BalanceSideCredit {
			balance = balance.Neg()
		}
		out = append(out, subledger.ControlBalance{AccountID: a.ID, AccountCode: a.Code, Balance: balance})
	}
	return out, nil
}

var (
	_ subledger.InvoiceRepository                 = (*GormInvoiceRepository)(nil)
	_ subledger.AgingInvoiceViewRepository        = (*GormInvoiceRepository)(nil)
	_ subledger.SubLedgerControlBalanceRepository = (*GormInvoiceRepository)(nil)
	_ subledger.PaymentRepository                 = (*GormPaymentRepository)(nil)
	_ subledger.ControlAccountBalanceRepository   = (*GormControlBalanceRepository)(nil)
)
