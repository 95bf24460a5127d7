package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindByDate(ctx context.Context, tenantID, entityID uuid.UUID, date time.Time) (*ledger.Period, error) {
	args := m.Called(ctx, tenantID, entityID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Period, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Period), args.Error(1)
}

func (m *MockPeriodRepository) Save(ctx context.Context, period *ledger.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) SavePosted(ctx context.Context, journal *ledger.JournalEntry) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.JournalEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.JournalEntry), args.Error(1)
}

// =============================================================================
// Fixture
// =============================================================================

type postingFixture struct {
	*testutil.Ledger
	cash    *ledger.Account
	revenue *ledger.Account
	header  *ledger.Account
	service *Service
}

func newPostingFixture(t *testing.T) *postingFixture {
	l := testutil.NewLedger(t)
	f := &postingFixture{
		Ledger:  l,
		cash:    l.Account("1000", "Cash", ledger.AccountTypeAsset),
		revenue: l.Account("4000", "Revenue", ledger.AccountTypeIncome),
	}
	header := ledger.NewAccount(l.TenantID, uuid.New(), "1", "Assets", ledger.AccountTypeAsset)
	header.IsPostingAllowed = false
	l.Store.AddAccounts(header)
	f.header = header

	f.service = NewService(l.Store.Accounts(), l.Store.Periods(), l.Store.Journals(), l.Publisher, l.IDs, l.Clock)
	return f
}

func (f *postingFixture) draft(amount string, lines ...ledger.JournalLineDraft) ledger.JournalDraft {
	if len(lines) == 0 {
		a := decimal.RequireFromString(amount)
		lines = []ledger.JournalLineDraft{
			ledger.DebitLine(f.cash.ID, a, "cash sale"),
			ledger.CreditLine(f.revenue.ID, a, "cash sale"),
		}
	}
	return ledger.JournalDraft{
		TenantID:    f.TenantID,
		EntityID:    f.EntityID,
		JournalDate: testutil.Date(2024, 3, 15),
		Currency:    "MYR",
		Reference:   "SALE-1",
		Lines:       lines,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// PostJournal
// =============================================================================

func TestPostJournal_Balanced(t *testing.T) {
	f := newPostingFixture(t)

	result, err := f.service.PostJournal(context.Background(), f.draft("250.00"))

	require.NoError(t, err)
	require.True(t, result.Posted())
	assert.True(t, result.Validation.IsValid())

	j := result.Journal
	assert.Equal(t, ledger.JournalStatusPosted, j.Status)
	assert.Equal(t, f.Period(time.March).ID, j.PeriodID)
	assert.Equal(t, testutil.Now, j.PostedAt)
	assert.Equal(t, shared.OriginPosting, j.Origin.Cell)
	assert.Equal(t, []int{1, 2}, []int{j.Lines[0].LineNo, j.Lines[1].LineNo})
	assert.Equal(t, j.ID, *result.JournalID())

	stored := f.Store.PostedJournals()
	require.Len(t, stored, 1)
	assert.Equal(t, j.ID, stored[0].ID)

	events := f.Publisher.EventsOfType(shared.EventTypeJournalPosted)
	require.Len(t, events, 1)
	posted := events[0].(*ledger.JournalPostedEvent)
	assert.Equal(t, j.ID, posted.JournalID)
	assert.Equal(t, 1, posted.PayloadVersion())
	assert.Equal(t, shared.OriginPosting, posted.Origin().Cell)
}

func TestPostJournal_Imbalanced(t *testing.T) {
	f := newPostingFixture(t)
	draft := f.draft("", ledger.DebitLine(f.cash.ID, d("100.00"), ""), ledger.CreditLine(f.revenue.ID, d("99.99"), ""))

	result, err := f.service.PostJournal(context.Background(), draft)

	require.NoError(t, err)
	assert.False(t, result.Posted())
	assert.Nil(t, result.JournalID())
	assert.False(t, result.Validation.IsValid())
	assert.Equal(t, []string{ledger.CodeImbalanced}, result.Validation.Codes())
	assert.Empty(t, f.Store.PostedJournals())
	assert.Empty(t, f.Publisher.Events())
}

func TestPostJournal_AccumulatesEveryFinding(t *testing.T) {
	f := newPostingFixture(t)
	missing := uuid.New()
	draft := f.draft("",
		ledger.JournalLineDraft{AccountID: f.cash.ID, Debit: d("10"), Credit: d("10")},
		ledger.JournalLineDraft{AccountID: f.revenue.ID},
		ledger.DebitLine(missing, d("5"), ""),
		ledger.DebitLine(f.header.ID, d("-1"), ""),
	)

	report, err := f.service.ValidateJournalDraft(context.Background(), draft)

	require.NoError(t, err)
	for _, code := range []string{
		ledger.CodeLineBothDebitCredit,
		ledger.CodeLineNoAmount,
		ledger.CodeAccountNotFound,
		ledger.CodeAccountNotPosting,
		ledger.CodeLineNegativeAmount,
		ledger.CodeImbalanced,
	} {
		assert.True(t, report.HasCode(code), code)
	}

	paths := make(map[string]string)
	for _, m := range report.Errors() {
		paths[m.Code] = m.Path
	}
	assert.Equal(t, "lines[2].accountId", paths[ledger.CodeAccountNotFound])
	assert.Equal(t, "lines[3].accountId", paths[ledger.CodeAccountNotPosting])
	assert.Equal(t, "lines[3].debit", paths[ledger.CodeLineNegativeAmount])
}

func TestPostJournal_EmptyLines(t *testing.T) {
	f := newPostingFixture(t)
	draft := f.draft("")
	draft.Lines = nil

	result, err := f.service.PostJournal(context.Background(), draft)

	require.NoError(t, err)
	assert.True(t, result.Validation.HasCode(ledger.CodeEmptyLines))
	assert.False(t, result.Posted())
}

func TestPostJournal_PeriodGating(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *postingFixture)
		date  time.Time
		code  string
	}{
		{
			name:  "closed period",
			setup: func(t *testing.T, f *postingFixture) { f.ClosePeriod(t, time.March) },
			date:  testutil.Date(2024, 3, 15),
			code:  ledger.CodePeriodNotOpen,
		},
		{
			name: "locked period",
			setup: func(t *testing.T, f *postingFixture) {
				p := *f.Period(time.March)
				require.NoError(t, p.Close(testutil.Now))
				require.NoError(t, p.Lock())
				f.Store.AddPeriods(&p)
			},
			date: testutil.Date(2024, 3, 15),
			code: ledger.CodePeriodNotOpen,
		},
		{
			name:  "no period",
			setup: func(t *testing.T, f *postingFixture) {},
			date:  testutil.Date(2025, 1, 2),
			code:  ledger.CodePeriodNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostingFixture(t)
			tt.setup(t, f)
			draft := f.draft("100.00")
			draft.JournalDate = tt.date

			result, err := f.service.PostJournal(context.Background(), draft)

			require.NoError(t, err)
			assert.False(t, result.Posted())
			assert.Equal(t, []string{tt.code}, result.Validation.Codes())
			for _, m := range result.Validation.Errors() {
				assert.Equal(t, ledger.PathJournalDate, m.Path)
			}
		})
	}
}

func TestPostJournal_DraftMutationDoesNotReachJournal(t *testing.T) {
	f := newPostingFixture(t)
	draft := f.draft("100.00")

	result, err := f.service.PostJournal(context.Background(), draft)
	require.NoError(t, err)

	draft.Lines[0].Debit = d("999")
	draft.Lines[0].AccountID = uuid.New()

	assert.True(t, result.Journal.Lines[0].Debit.Equal(d("100")))
	assert.Equal(t, f.cash.ID, result.Journal.Lines[0].AccountID)
	assert.True(t, f.Store.PostedJournals()[0].Lines[0].Debit.Equal(d("100")))
}

func TestPostJournal_KeepsCallerOrigin(t *testing.T) {
	f := newPostingFixture(t)
	draft := f.draft("10")
	draft.Origin = shared.NewOrigin(shared.OriginAssetDepreciation).WithSource("erp", "FA-001")

	result, err := f.service.PostJournal(context.Background(), draft)

	require.NoError(t, err)
	assert.Equal(t, shared.OriginAssetDepreciation, result.Journal.Origin.Cell)
	assert.Equal(t, "FA-001", result.Journal.Origin.SourceReference)
}

func TestPostJournal_PublishFailureKeepsJournal(t *testing.T) {
	f := newPostingFixture(t)
	f.Publisher.SetError(errors.New("broker unavailable"))

	result, err := f.service.PostJournal(context.Background(), f.draft("10"))

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrEventPublishFailed)
	require.True(t, result.Posted())
	assert.Len(t, f.Store.PostedJournals(), 1)
}

func TestPostJournal_NilPublisher(t *testing.T) {
	f := newPostingFixture(t)
	svc := NewService(f.Store.Accounts(), f.Store.Periods(), f.Store.Journals(), nil, f.IDs, f.Clock)

	result, err := svc.PostJournal(context.Background(), f.draft("10"))

	require.NoError(t, err)
	assert.True(t, result.Posted())
}

func TestPostJournal_InfrastructureErrorsAreFatal(t *testing.T) {
	t.Run("period lookup", func(t *testing.T) {
		f := newPostingFixture(t)
		periods := new(MockPeriodRepository)
		periods.On("FindByDate", mock.Anything, f.TenantID, f.EntityID, mock.Anything).
			Return(nil, errors.New("connection reset"))
		svc := NewService(f.Store.Accounts(), periods, f.Store.Journals(), f.Publisher, f.IDs, f.Clock)

		result, err := svc.PostJournal(context.Background(), f.draft("10"))

		assert.Nil(t, result)
		assert.ErrorContains(t, err, "connection reset")
		periods.AssertExpectations(t)
	})

	t.Run("save", func(t *testing.T) {
		f := newPostingFixture(t)
		journals := new(MockJournalRepository)
		journals.On("SavePosted", mock.Anything, mock.AnythingOfType("*ledger.JournalEntry")).
			Return(errors.New("disk full"))
		svc := NewService(f.Store.Accounts(), f.Store.Periods(), journals, f.Publisher, f.IDs, f.Clock)

		result, err := svc.PostJournal(context.Background(), f.draft("10"))

		assert.Nil(t, result)
		assert.ErrorContains(t, err, "disk full")
		assert.Empty(t, f.Publisher.Events())
		journals.AssertExpectations(t)
	})
}

// =============================================================================
// PeriodService
// =============================================================================

func TestPeriodService_CloseAndLock(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewPeriodService(l.Store.Periods(), l.Publisher, l.IDs, l.Clock)
	periodID := l.Period(time.June).ID

	closed, err := svc.ClosePeriod(context.Background(), l.TenantID, periodID)
	require.NoError(t, err)
	assert.Equal(t, ledger.PeriodStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	events := l.Publisher.EventsOfType(shared.EventTypePeriodClosed)
	require.Len(t, events, 1)
	assert.Equal(t, shared.OriginPeriodClose, events[0].(shared.VersionedEvent).Origin().Cell)

	_, err = svc.ClosePeriod(context.Background(), l.TenantID, periodID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	locked, err := svc.LockPeriod(context.Background(), l.TenantID, periodID)
	require.NoError(t, err)
	assert.Equal(t, ledger.PeriodStatusLocked, locked.Status)
}

func TestPeriodService_LockOpenPeriodFails(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := NewPeriodService(l.Store.Periods(), nil, l.IDs, l.Clock)

	_, err := svc.LockPeriod(context.Background(), l.TenantID, l.Period(time.June).ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.ClosePeriod(context.Background(), l.TenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
