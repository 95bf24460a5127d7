package testutil

import (
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/infrastructure/clock"
	"github.com/erp/kernel/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Now is the instant returned by fixture clocks
var Now = time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)

// Date builds a UTC calendar date
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ledger is an in-memory ledger with one tenant, one entity and twelve open
// monthly periods covering 2024.
type Ledger struct {
	Store     *memory.Store
	TenantID  uuid.UUID
	EntityID  uuid.UUID
	Periods   []*ledger.Period
	IDs       *clock.Sequence
	Clock     clock.Fixed
	Publisher *RecordingPublisher
}

// NewLedger builds the fixture
func NewLedger(t *testing.T) *Ledger {
	t.Helper()
	l := &Ledger{
		Store:     memory.NewStore(),
		TenantID:  uuid.New(),
		EntityID:  uuid.New(),
		IDs:       clock.NewSequence(),
		Clock:     clock.Fixed(Now),
		Publisher: NewRecordingPublisher(),
	}
	for m := time.January; m <= time.December; m++ {
		start := Date(2024, m, 1)
		period, err := ledger.NewPeriod(uuid.New(), l.TenantID, l.EntityID,
			start.Format("2006-01"), start, start.AddDate(0, 1, -1))
		require.NoError(t, err)
		l.Periods = append(l.Periods, period)
	}
	l.Store.AddPeriods(l.Periods...)
	return l
}

// Period returns the fixture period of a month
func (l *Ledger) Period(m time.Month) *ledger.Period {
	return l.Periods[m-1]
}

// Account seeds a posting account
func (l *Ledger) Account(code, name string, typ ledger.AccountType) *ledger.Account {
	acc := ledger.NewAccount(l.TenantID, uuid.New(), code, name, typ)
	l.Store.AddAccounts(acc)
	return acc
}

// ControlAccount seeds a control account of a sub-ledger
func (l *Ledger) ControlAccount(code, name string, typ ledger.AccountType, sub ledger.SubLedgerType) *ledger.Account {
	acc := ledger.NewAccount(l.TenantID, uuid.New(), code, name, typ).AsControl(sub)
	l.Store.AddAccounts(acc)
	return acc
}

// ClosePeriod marks a fixture period CLOSED in the store
func (l *Ledger) ClosePeriod(t *testing.T, m time.Month) {
	t.Helper()
	p := *l.Period(m)
	require.NoError(t, p.Close(Now))
	l.Store.AddPeriods(&p)
}
