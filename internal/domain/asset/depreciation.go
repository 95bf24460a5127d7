package asset

import (
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepreciationMethodCode is the persisted code of a depreciation method
type DepreciationMethodCode string

const (
	DepreciationStraightLine      DepreciationMethodCode = "STRAIGHT_LINE"
	DepreciationDecliningBalance  DepreciationMethodCode = "DECLINING_BALANCE"
	DepreciationUnitsOfProduction DepreciationMethodCode = "UNITS_OF_PRODUCTION"
)

// ScheduleLine is one period of an asset's depreciation schedule
type ScheduleLine struct {
	ID                      uuid.UUID
	TenantID                uuid.UUID
	AssetID                 uuid.UUID
	PeriodNumber            int
	PeriodStart             time.Time
	PeriodEnd               time.Time
	DepreciationAmount      decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	NetBookValue            decimal.Decimal
	PostedJournalID         *uuid.UUID
}

// IsPosted returns true once the line has been realised by a journal
func (l *ScheduleLine) IsPosted() bool {
	return l.PostedJournalID != nil
}

// MarkPosted records the journal that realised the line
func (l *ScheduleLine) MarkPosted(journalID uuid.UUID) error {
	if l.IsPosted() {
		return shared.NewDomainError("INVALID_STATE", "Schedule line is already posted")
	}
	l.PostedJournalID = &journalID
	return nil
}

// DepreciationMethod builds schedules. The set of methods is closed: only
// this package can implement it.
type DepreciationMethod interface {
	Code() DepreciationMethodCode
	// Schedule generates every period of the asset's useful life
	Schedule(a *Asset) ([]ScheduleLine, error)
	sealed()
}

// ResolveDepreciationMethod returns the method for a code. Recognised methods
// without an implementation fail with shared.ErrUnsupportedDepreciationMethod.
func ResolveDepreciationMethod(code DepreciationMethodCode) (DepreciationMethod, error) {
	switch code {
	case DepreciationStraightLine:
		return StraightLine{}, nil
	case DepreciationDecliningBalance, DepreciationUnitsOfProduction:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedDepreciationMethod, code)
	}
	return nil, fmt.Errorf("%w: unknown method %q", shared.ErrUnsupportedDepreciationMethod, code)
}

// StraightLine depreciates evenly over calendar months
type StraightLine struct{}

func (StraightLine) sealed() {}

// Code returns STRAIGHT_LINE
func (StraightLine) Code() DepreciationMethodCode {
	return DepreciationStraightLine
}

// Schedule gives every month depreciable / life truncated to MoneyScale and
// lets the last month absorb the remainder, so the schedule sums to the
// depreciable amount, no amount is negative and NBV never drops below salvage.
// Periods are calendar months starting with the month of DepreciationStartDate.
func (StraightLine) Schedule(a *Asset) ([]ScheduleLine, error) {
	if a.UsefulLifeMonths < 1 {
		return nil, fmt.Errorf("%w: useful life must be at least one month", shared.ErrInvalidInput)
	}
	depreciable := a.DepreciableAmount()
	monthly := valueobject.TruncateMoney(depreciable.Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))))

	start := shared.DateOf(a.DepreciationStartDate)
	firstOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	lines := make([]ScheduleLine, 0, a.UsefulLifeMonths)
	accumulated := decimal.Zero
	for n := 1; n <= a.UsefulLifeMonths; n++ {
		amount := monthly
		if n == a.UsefulLifeMonths {
			amount = depreciable.Sub(accumulated)
		}
		accumulated = accumulated.Add(amount)

		monthStart := firstOfMonth.AddDate(0, n-1, 0)
		periodStart := monthStart
		if n == 1 {
			periodStart = start
		}
		lines = append(lines, ScheduleLine{
			TenantID:                a.TenantID,
			AssetID:                 a.ID,
			PeriodNumber:            n,
			PeriodStart:             periodStart,
			PeriodEnd:               shared.EndOfMonth(monthStart),
			DepreciationAmount:      amount,
			AccumulatedDepreciation: accumulated,
			NetBookValue:            a.Cost.Sub(accumulated),
		})
	}
	return lines, nil
}
