package asset

import (
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset is a capitalised fixed asset. Core fields are immutable after
// registration; disposal is booked as a journal, not as a state change.
type Asset struct {
	ID                               uuid.UUID
	TenantID                         uuid.UUID
	EntityID                         uuid.UUID
	AssetCode                        string
	Name                             string
	Currency                         valueobject.Currency
	Cost                             decimal.Decimal
	SalvageValue                     decimal.Decimal
	UsefulLifeMonths                 int
	DepreciationMethod               DepreciationMethodCode
	AcquisitionDate                  time.Time
	DepreciationStartDate            time.Time
	AssetAccountID                   uuid.UUID
	AccumulatedDepreciationAccountID uuid.UUID
	DepreciationExpenseAccountID     uuid.UUID
	CreatedAt                        time.Time
}

// DepreciableAmount returns cost - salvage
func (a *Asset) DepreciableAmount() decimal.Decimal {
	return a.Cost.Sub(a.SalvageValue)
}

// AssetDraft is a registration request
type AssetDraft struct {
	TenantID                         uuid.UUID              `json:"tenantId" validate:"required"`
	EntityID                         uuid.UUID              `json:"entityId" validate:"required"`
	AssetCode                        string                 `json:"assetCode" validate:"required,max=64"`
	Name                             string                 `json:"name" validate:"required,max=200"`
	Currency                         valueobject.Currency   `json:"currency" validate:"required,len=3"`
	Cost                             decimal.Decimal        `json:"cost" validate:"dec_gt0"`
	SalvageValue                     decimal.Decimal        `json:"salvageValue" validate:"dec_gte0"`
	UsefulLifeMonths                 int                    `json:"usefulLifeMonths" validate:"gte=1"`
	DepreciationMethod               DepreciationMethodCode `json:"depreciationMethod" validate:"required"`
	AcquisitionDate                  time.Time              `json:"acquisitionDate" validate:"required"`
	DepreciationStartDate            time.Time              `json:"depreciationStartDate" validate:"required"`
	AssetAccountID                   uuid.UUID              `json:"assetAccountId" validate:"required"`
	AccumulatedDepreciationAccountID uuid.UUID              `json:"accumulatedDepreciationAccountId" validate:"required"`
	DepreciationExpenseAccountID     uuid.UUID              `json:"depreciationExpenseAccountId" validate:"required"`
}

// Validate checks field tags and the cross-field rules of a draft
func (d AssetDraft) Validate() shared.ValidationReport {
	report := shared.ValidateStruct(d)
	if d.SalvageValue.GreaterThan(d.Cost) {
		report.AddError("ASSET-SALVAGE-EXCEEDS-COST", "salvageValue",
			"Salvage value %s exceeds cost %s", d.SalvageValue.String(), d.Cost.String())
	}
	if !d.DepreciationStartDate.IsZero() && !d.AcquisitionDate.IsZero() &&
		shared.DateOf(d.DepreciationStartDate).Before(shared.DateOf(d.AcquisitionDate)) {
		report.AddError("ASSET-START-BEFORE-ACQUISITION", "depreciationStartDate",
			"Depreciation cannot start before acquisition")
	}
	return report
}

// NewAsset builds an asset from a validated draft
func NewAsset(id uuid.UUID, createdAt time.Time, d AssetDraft) (*Asset, error) {
	if report := d.Validate(); !report.IsValid() {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, report.Codes())
	}
	return &Asset{
		ID:                               id,
		TenantID:                         d.TenantID,
		EntityID:                         d.EntityID,
		AssetCode:                        d.AssetCode,
		Name:                             d.Name,
		Currency:                         d.Currency,
		Cost:                             d.Cost,
		SalvageValue:                     d.SalvageValue,
		UsefulLifeMonths:                 d.UsefulLifeMonths,
		DepreciationMethod:               d.DepreciationMethod,
		AcquisitionDate:                  shared.DateOf(d.AcquisitionDate),
		DepreciationStartDate:            shared.DateOf(d.DepreciationStartDate),
		AssetAccountID:                   d.AssetAccountID,
		AccumulatedDepreciationAccountID: d.AccumulatedDepreciationAccountID,
		DepreciationExpenseAccountID:     d.DepreciationExpenseAccountID,
		CreatedAt:                        createdAt,
	}, nil
}
