package models

import (
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for chart-of-accounts entries
type AccountModel struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_gl_account_tenant_code,priority:1"`
	Code             string               `gorm:"type:varchar(32);not null;uniqueIndex:idx_gl_account_tenant_code,priority:2"`
	Name             string               `gorm:"type:varchar(200);not null"`
	Type             ledger.AccountType   `gorm:"type:varchar(16);not null"`
	NormalBalance    ledger.BalanceSide   `gorm:"type:varchar(8);not null"`
	IsPostingAllowed bool                 `gorm:"not null"`
	IsControlAccount bool                 `gorm:"not null;default:false"`
	SubLedgerType    ledger.SubLedgerType `gorm:"type:varchar(4);not null;default:''"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "gl_accounts"
}

// ToDomain converts the model to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Code:             m.Code,
		Name:             m.Name,
		Type:             m.Type,
		NormalBalance:    m.NormalBalance,
		IsPostingAllowed: m.IsPostingAllowed,
		IsControlAccount: m.IsControlAccount,
		SubLedgerType:    m.SubLedgerType,
	}
}

// AccountModelFromDomain creates a model from a domain Account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	return &AccountModel{
		ID:               a.ID,
		TenantID:         a.TenantID,
		Code:             a.Code,
		Name:             a.Name,
		Type:             a.Type,
		NormalBalance:    a.NormalBalance,
		IsPostingAllowed: a.IsPostingAllowed,
		IsControlAccount: a.IsControlAccount,
		SubLedgerType:    a.SubLedgerType,
	}
}

// PeriodModel is the persistence model for accounting periods
type PeriodModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID           `gorm:"type:uuid;not null;index:idx_gl_period_lookup,priority:1"`
	EntityID  uuid.UUID           `gorm:"type:uuid;not null;index:idx_gl_period_lookup,priority:2"`
	Code      string              `gorm:"type:varchar(32);not null"`
	StartDate time.Time           `gorm:"type:date;not null;index:idx_gl_period_lookup,priority:3"`
	EndDate   time.Time           `gorm:"type:date;not null"`
	Status    ledger.PeriodStatus `gorm:"type:varchar(10);not null;default:'OPEN'"`
	ClosedAt  *time.Time
}

// TableName returns the table name for GORM
func (PeriodModel) TableName() string {
	return "gl_periods"
}

// ToDomain converts the model to a domain Period
func (m *PeriodModel) ToDomain() *ledger.Period {
	return &ledger.Period{
		ID:        m.ID,
		TenantID:  m.TenantID,
		EntityID:  m.EntityID,
		Code:      m.Code,
		StartDate: shared.DateOf(m.StartDate),
		EndDate:   shared.DateOf(m.EndDate),
		Status:    m.Status,
		ClosedAt:  m.ClosedAt,
	}
}

// PeriodModelFromDomain creates a model from a domain Period
func PeriodModelFromDomain(p *ledger.Period) *PeriodModel {
	return &PeriodModel{
		ID:        p.ID,
		TenantID:  p.TenantID,
		EntityID:  p.EntityID,
		Code:      p.Code,
		StartDate: shared.DateOf(p.StartDate),
		EndDate:   shared.DateOf(p.EndDate),
		Status:    p.Status,
		ClosedAt:  p.ClosedAt,
	}
}

// JournalEntryModel is the persistence model for posted journals. Rows are
// only ever inserted.
type JournalEntryModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_gl_journal_tenant_date,priority:1"`
	EntityID        uuid.UUID            `gorm:"type:uuid;not null"`
	PeriodID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	JournalDate     time.Time            `gorm:"type:date;not null;index:idx_gl_journal_tenant_date,priority:2"`
	Currency        valueobject.Currency `gorm:"type:char(3);not null"`
	Reference       string               `gorm:"type:varchar(100)"`
	Memo            string               `gorm:"type:text"`
	OriginCell      string               `gorm:"type:varchar(100)"`
	SourceSystem    string               `gorm:"type:varchar(100)"`
	SourceReference string               `gorm:"type:varchar(200)"`
	Status          ledger.JournalStatus `gorm:"type:varchar(10);not null"`
	PostedAt        time.Time            `gorm:"not null"`
	Lines           []JournalLineModel   `gorm:"foreignKey:JournalID;references:ID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "gl_journal_entries"
}

// JournalLineModel is one debit or credit line of a posted journal
type JournalLineModel struct {
	JournalID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LineNo       int             `gorm:"primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_gl_line_account,priority:1"`
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_gl_line_account,priority:2"`
	Debit        decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Credit       decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Description  string          `gorm:"type:varchar(500)"`
	SegmentID    *uuid.UUID      `gorm:"type:uuid"`
	CostCenterID *uuid.UUID      `gorm:"type:uuid"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "gl_journal_lines"
}

// ToDomain converts the model and its lines to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	j := &ledger.JournalEntry{
		ID:          m.ID,
		TenantID:    m.TenantID,
		EntityID:    m.EntityID,
		PeriodID:    m.PeriodID,
		JournalDate: shared.DateOf(m.JournalDate),
		Currency:    m.Currency,
		Reference:   m.Reference,
		Memo:        m.Memo,
		Origin: shared.OriginCellMeta{
			Cell:            m.OriginCell,
			SourceSystem:    m.SourceSystem,
			SourceReference: m.SourceReference,
		},
		Status:   m.Status,
		PostedAt: m.PostedAt,
		Lines:    make([]ledger.JournalLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		j.Lines[i] = ledger.JournalLine{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			Dimensions: ledger.Dimensions{
				SegmentID:    l.SegmentID,
				CostCenterID: l.CostCenterID,
				ProjectID:    l.ProjectID,
			},
		}
	}
	return j
}

// JournalEntryModelFromDomain creates a model, lines included, from a domain JournalEntry
func JournalEntryModelFromDomain(j *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
		ID:              j.ID,
		TenantID:        j.TenantID,
		EntityID:        j.EntityID,
		PeriodID:        j.PeriodID,
		JournalDate:     shared.DateOf(j.JournalDate),
		Currency:        j.Currency,
		Reference:       j.Reference,
		Memo:            j.Memo,
		OriginCell:      j.Origin.Cell,
		SourceSystem:    j.Origin.SourceSystem,
		SourceReference: j.Origin.SourceReference,
		Status:          j.Status,
		PostedAt:        j.PostedAt,
		Lines:           make([]JournalLineModel, len(j.Lines)),
	}
	for i, l := range j.Lines {
		m.Lines[i] = JournalLineModel{
			JournalID:    j.ID,
			LineNo:       l.LineNo,
			TenantID:     j.TenantID,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Description:  l.Description,
			SegmentID:    l.Dimensions.SegmentID,
			CostCenterID: l.Dimensions.CostCenterID,
			ProjectID:    l.Dimensions.ProjectID,
		}
	}
	return m
}
