package memory

import (
	"context"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_TenantIsolationAndCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tenantID := uuid.New()
	acc := ledger.NewAccount(tenantID, uuid.New(), "1000", "Cash", ledger.AccountTypeAsset)
	s.AddAccounts(acc)

	got, err := s.Accounts().FindByID(ctx, tenantID, acc.ID)
	require.NoError(t, err)
	got.Name = "changed"

	again, err := s.Accounts().FindByID(ctx, tenantID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cash", again.Name)

	_, err = s.Accounts().FindByID(ctx, uuid.New(), acc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPeriodRepository_FindByDate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tenantID, entityID := uuid.New(), uuid.New()
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	p, err := ledger.NewPeriod(uuid.New(), tenantID, entityID, "2024-06", start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	s.AddPeriods(p)

	got, err := s.Periods().FindByDate(ctx, tenantID, entityID, time.Date(2024, time.June, 30, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.Periods().FindByDate(ctx, tenantID, entityID, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = s.Periods().FindByDate(ctx, tenantID, uuid.New(), start)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRateRepository_NormalizesRateDate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := fx.RateKey{
		TenantID:     uuid.New(),
		FromCurrency: valueobject.Currency("USD"),
		ToCurrency:   valueobject.Currency("MYR"),
		RateType:     fx.RateTypeClosing,
		RateDate:     time.Date(2024, time.December, 31, 17, 30, 0, 0, time.UTC),
	}
	rate, err := fx.NewRate(key, decimal.RequireFromString("4.47"), "test")
	require.NoError(t, err)
	require.NoError(t, s.Rates().UpsertRate(ctx, rate))

	key.RateDate = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	got, err := s.Rates().FindRate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "4.47", got.Rate.String())

	key.RateType = fx.RateTypeSpot
	_, err = s.Rates().FindRate(ctx, key)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMonetaryBalanceRepository_FiltersCurrencies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddMonetaryBalances(
		fx.MonetaryBalance{AccountID: uuid.New(), Currency: "USD"},
		fx.MonetaryBalance{AccountID: uuid.New(), Currency: "EUR"},
	)

	all, err := s.MonetaryBalances().ListMonetaryBalances(ctx, uuid.Nil, uuid.Nil, time.Time{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	usd, err := s.MonetaryBalances().ListMonetaryBalances(ctx, uuid.Nil, uuid.Nil, time.Time{}, []valueobject.Currency{"USD"})
	require.NoError(t, err)
	require.Len(t, usd, 1)
	assert.Equal(t, valueobject.Currency("USD"), usd[0].Currency)
}
