package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRateRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	key := fx.RateKey{
		TenantID:     uuid.New(),
		FromCurrency: "USD",
		ToCurrency:   "MYR",
		RateType:     fx.RateTypeClosing,
		RateDate:     time.Date(2024, 12, 31, 17, 30, 0, 0, time.UTC),
	}
	rate, err := fx.NewRate(key, decimal.RequireFromString("4.47"), "central-bank")
	require.NoError(t, err)
	require.NoError(t, repos.Rates().UpsertRate(ctx, rate))

	t.Run("finds rate by calendar day", func(t *testing.T) {
		got, err := repos.Rates().FindRate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "4.47", got.Rate.String())
		assert.Equal(t, "central-bank", got.Source)
		assert.Equal(t, date(2024, 12, 31), got.RateDate)
	})

	t.Run("upsert replaces the stored rate", func(t *testing.T) {
		replacement, err := fx.NewRate(key, decimal.RequireFromString("4.5"), "manual")
		require.NoError(t, err)
		require.NoError(t, repos.Rates().UpsertRate(ctx, replacement))

		got, err := repos.Rates().FindRate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "4.5", got.Rate.String())
		assert.Equal(t, "manual", got.Source)
	})

	missing := []struct {
		name   string
		mutate func(k *fx.RateKey)
	}{
		{"inverse pair is never derived", func(k *fx.RateKey) { k.FromCurrency, k.ToCurrency = k.ToCurrency, k.FromCurrency }},
		{"other rate type", func(k *fx.RateKey) { k.RateType = fx.RateTypeSpot }},
		{"other day", func(k *fx.RateKey) { k.RateDate = date(2024, 12, 30) }},
		{"other tenant", func(k *fx.RateKey) { k.TenantID = uuid.New() }},
	}
	for _, tt := range missing {
		t.Run(tt.name, func(t *testing.T) {
			k := key
			tt.mutate(&k)
			_, err := repos.Rates().FindRate(ctx, k)
			assert.ErrorIs(t, err, shared.ErrNotFound)
		})
	}
}

func TestGormMonetaryBalanceRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	tenantID, entityID := uuid.New(), uuid.New()
	receivable, payable := uuid.New(), uuid.New()

	balance := func(account uuid.UUID, currency valueobject.Currency, foreign, base string) fx.MonetaryBalance {
		return fx.MonetaryBalance{
			AccountID:         account,
			Currency:          currency,
			BalanceForeign:    decimal.RequireFromString(foreign),
			BalanceBaseBefore: decimal.RequireFromString(base),
			IsMonetary:        true,
		}
	}
	require.NoError(t, repos.MonetaryBalances().SaveSnapshot(ctx, tenantID, entityID, date(2024, 11, 30),
		balance(receivable, "USD", "1000", "4400"),
		balance(payable, "EUR", "-200", "-950"),
	))
	require.NoError(t, repos.MonetaryBalances().SaveSnapshot(ctx, tenantID, entityID, date(2024, 12, 31),
		balance(receivable, "USD", "1500", "6600"),
	))

	t.Run("latest snapshot on or before cutoff per account", func(t *testing.T) {
		got, err := repos.MonetaryBalances().ListMonetaryBalances(ctx, tenantID, entityID, date(2024, 12, 31), nil)
		require.NoError(t, err)
		require.Len(t, got, 2)

		byAccount := make(map[uuid.UUID]fx.MonetaryBalance)
		for _, b := range got {
			byAccount[b.AccountID] = b
		}
		assert.Equal(t, "1500", byAccount[receivable].BalanceForeign.String())
		assert.Equal(t, "-950", byAccount[payable].BalanceBaseBefore.String())
	})

	t.Run("earlier cutoff ignores later snapshots", func(t *testing.T) {
		got, err := repos.MonetaryBalances().ListMonetaryBalances(ctx, tenantID, entityID, date(2024, 12, 15), nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, b := range got {
			if b.AccountID == receivable {
				assert.Equal(t, "1000", b.BalanceForeign.String())
			}
		}
	})

	t.Run("currency filter", func(t *testing.T) {
		got, err := repos.MonetaryBalances().ListMonetaryBalances(ctx, tenantID, entityID, date(2024, 12, 31), []valueobject.Currency{"EUR"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, payable, got[0].AccountID)
	})

	t.Run("other entity", func(t *testing.T) {
		got, err := repos.MonetaryBalances().ListMonetaryBalances(ctx, tenantID, uuid.New(), date(2024, 12, 31), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
