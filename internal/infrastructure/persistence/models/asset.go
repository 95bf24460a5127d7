package models

import (
	"time"

	"github.com/erp/kernel/internal/domain/asset"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetModel is the persistence model for fixed assets
type AssetModel struct {
	ID                               uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	TenantID                         uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_fa_asset_code,priority:1"`
	EntityID                         uuid.UUID                    `gorm:"type:uuid;not null;index"`
	AssetCode                        string                       `gorm:"type:varchar(64);not null;uniqueIndex:idx_fa_asset_code,priority:2"`
	Name                             string                       `gorm:"type:varchar(200);not null"`
	Currency                         valueobject.Currency         `gorm:"type:char(3);not null"`
	Cost                             decimal.Decimal              `gorm:"type:numeric(20,6);not null"`
	SalvageValue                     decimal.Decimal              `gorm:"type:numeric(20,6);not null"`
	UsefulLifeMonths                 int                          `gorm:"not null"`
	DepreciationMethod               asset.DepreciationMethodCode `gorm:"type:varchar(30);not null"`
	AcquisitionDate                  time.Time                    `gorm:"type:date;not null"`
	DepreciationStartDate            time.Time                    `gorm:"type:date;not null"`
	AssetAccountID                   uuid.UUID                    `gorm:"type:uuid;not null"`
	AccumulatedDepreciationAccountID uuid.UUID                    `gorm:"type:uuid;not null"`
	DepreciationExpenseAccountID     uuid.UUID                    `gorm:"type:uuid;not null"`
	CreatedAt                        time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssetModel) TableName() string {
	return "fa_assets"
}

// ToDomain converts the model to a domain Asset
func (m *AssetModel) ToDomain() *asset.Asset {
	return &asset.Asset{
		ID:                               m.ID,
		TenantID:                         m.TenantID,
		EntityID:                         m.EntityID,
		AssetCode:                        m.AssetCode,
		Name:                             m.Name,
		Currency:                         m.Currency,
		Cost:                             m.Cost,
		SalvageValue:                     m.SalvageValue,
		UsefulLifeMonths:                 m.UsefulLifeMonths,
		DepreciationMethod:               m.DepreciationMethod,
		AcquisitionDate:                  shared.DateOf(m.AcquisitionDate),
		DepreciationStartDate:            shared.DateOf(m.DepreciationStartDate),
		AssetAccountID:                   m.AssetAccountID,
		AccumulatedDepreciationAccountID: m.AccumulatedDepreciationAccountID,
		DepreciationExpenseAccountID:     m.DepreciationExpenseAccountID,
		CreatedAt:                        m.CreatedAt,
	}
}

// AssetModelFromDomain creates a model from a domain Asset
func AssetModelFromDomain(a *asset.Asset) *AssetModel {
	return &AssetModel{
		ID:                               a.ID,
		TenantID:                         a.TenantID,
		EntityID:                         a.EntityID,
		AssetCode:                        a.AssetCode,
		Name:                             a.Name,
		Currency:                         a.Currency,
		Cost:                             a.Cost,
		SalvageValue:                     a.SalvageValue,
		UsefulLifeMonths:                 a.UsefulLifeMonths,
		DepreciationMethod:               a.DepreciationMethod,
		AcquisitionDate:                  shared.DateOf(a.AcquisitionDate),
		DepreciationStartDate:            shared.DateOf(a.DepreciationStartDate),
		AssetAccountID:                   a.AssetAccountID,
		AccumulatedDepreciationAccountID: a.AccumulatedDepreciationAccountID,
		DepreciationExpenseAccountID:     a.DepreciationExpenseAccountID,
		CreatedAt:                        a.CreatedAt,
	}
}

// ScheduleLineModel is one period of an asset's depreciation schedule
type ScheduleLineModel struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	AssetID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fa_schedule_period,priority:1"`
	PeriodNumber            int             `gorm:"not null;uniqueIndex:idx_fa_schedule_period,priority:2"`
	PeriodStart             time.Time       `gorm:"type:date;not null"`
	PeriodEnd               time.Time       `gorm:"type:date;not null;index"`
	DepreciationAmount      decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	AccumulatedDepreciation decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	NetBookValue            decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	PostedJournalID         *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ScheduleLineModel) TableName() string {
	return "fa_depreciation_schedule"
}

// ToDomain converts the model to a domain ScheduleLine
func (m *ScheduleLineModel) ToDomain() asset.ScheduleLine {
	return asset.ScheduleLine{
		ID:                      m.ID,
		TenantID:                m.TenantID,
		AssetID:                 m.AssetID,
		PeriodNumber:            m.PeriodNumber,
		PeriodStart:             shared.DateOf(m.PeriodStart),
		PeriodEnd:               shared.DateOf(m.PeriodEnd),
		DepreciationAmount:      m.DepreciationAmount,
		AccumulatedDepreciation: m.AccumulatedDepreciation,
		NetBookValue:            m.NetBookValue,
		PostedJournalID:         m.PostedJournalID,
	}
}

// ScheduleLineModelFromDomain creates a model from a domain ScheduleLine
func ScheduleLineModelFromDomain(l asset.ScheduleLine) *ScheduleLineModel {
	return &ScheduleLineModel{
		ID:                      l.ID,
		TenantID:                l.TenantID,
		AssetID:                 l.AssetID,
		PeriodNumber:            l.PeriodNumber,
		PeriodStart:             shared.DateOf(l.PeriodStart),
		PeriodEnd:               shared.DateOf(l.PeriodEnd),
		DepreciationAmount:      l.DepreciationAmount,
		AccumulatedDepreciation: l.AccumulatedDepreciation,
		NetBookValue:            l.NetBookValue,
		PostedJournalID:         l.PostedJournalID,
	}
}
