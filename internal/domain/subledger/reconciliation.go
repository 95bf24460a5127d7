package subledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ControlBalance is a control account's base-currency balance on its normal side
type ControlBalance struct {
	AccountID   uuid.UUID
	AccountCode string
	Balance     decimal.Decimal
}

// OpenBalance is the base-currency sum of open invoices bound to a control account
type OpenBalance struct {
	ControlAccountID uuid.UUID
	Amount           decimal.Decimal
}

// Difference is a control account that does not agree with its sub-ledger
type Difference struct {
	ControlAccountID uuid.UUID       `json:"controlAccountId"`
	AccountCode      string          `json:"accountCode"`
	ControlBalance   decimal.Decimal `json:"controlBalance"`
	SubLedgerBalance decimal.Decimal `json:"subLedgerBalance"`
	Difference       decimal.Decimal `json:"difference"`
}

// Reconciliation is the result of comparing control accounts to sub-ledger totals
type Reconciliation struct {
	IsInBalance bool         `json:"isInBalance"`
	Differences []Difference `json:"differences"`
}

// Reconcile compares every control account with its sub-ledger total. A
// missing sub-ledger side counts as zero and any non-zero difference is reported.
func Reconcile(controls []ControlBalance, open []OpenBalance) Reconciliation {
	sums := make(map[uuid.UUID]decimal.Decimal, len(open))
	for _, o := range open {
		sums[o.ControlAccountID] = sums[o.ControlAccountID].Add(o.Amount)
	}

	result := Reconciliation{Differences: make([]Difference, 0)}
	for _, c := range controls {
		sub := sums[c.AccountID]
		diff := c.Balance.Sub(sub)
		if diff.IsZero() {
			continue
		}
		result.Differences = append(result.Differences, Difference{
			ControlAccountID: c.AccountID,
			AccountCode:      c.AccountCode,
			ControlBalance:   c.Balance,
			SubLedgerBalance: sub,
			Difference:       diff,
		})
	}
	result.IsInBalance = len(result.Differences) == 0
	return result
}
