package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRates struct {
	fx.RateRepository
	finds int
}

func (r *countingRates) FindRate(ctx context.Context, key fx.RateKey) (*fx.Rate, error) {
	r.finds++
	return r.RateRepository.FindRate(ctx, key)
}

func newRateCacheFixture(t *testing.T, opts ...RateCacheOption) (*RateCache, *countingRates, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := &countingRates{RateRepository: memory.NewStore().Rates()}
	return NewRateCache(repo, client, opts...), repo, mr
}

func closingRate(t *testing.T, value string) *fx.Rate {
	t.Helper()
	rate, err := fx.NewRate(fx.RateKey{
		TenantID:     uuid.MustParse("0191a5a4-0000-7000-8000-000000000001"),
		FromCurrency: "USD",
		ToCurrency:   "MYR",
		RateType:     fx.RateTypeClosing,
		RateDate:     time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}, decimal.RequireFromString(value), "BNM")
	require.NoError(t, err)
	return rate
}

func TestRateCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newRateCacheFixture(t)
	rate := closingRate(t, "4.4700")
	require.NoError(t, c.UpsertRate(ctx, rate))

	first, err := c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)
	second, err := c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.finds)
	assert.True(t, rate.Rate.Equal(first.Rate))
	assert.True(t, rate.Rate.Equal(second.Rate))
	assert.Equal(t, "BNM", second.Source)
	assert.Equal(t, rate.RateKey, second.RateKey)

	cacheKey := "fx:rate:0191a5a4-0000-7000-8000-000000000001:USD:MYR:CLOSING:2024-12-31"
	assert.True(t, mr.Exists(cacheKey))
	assert.Equal(t, 24*time.Hour, mr.TTL(cacheKey))
}

func TestRateCache_IntradayKeyHitsSameEntry(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newRateCacheFixture(t)
	rate := closingRate(t, "4.47")
	require.NoError(t, c.UpsertRate(ctx, rate))

	key := rate.RateKey
	key.RateDate = key.RateDate.Add(15 * time.Hour)
	_, err := c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)
	_, err = c.FindRate(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.finds)
}

func TestRateCache_MissingRateIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newRateCacheFixture(t)
	key := closingRate(t, "1").RateKey

	for i := 0; i < 2; i++ {
		_, err := c.FindRate(ctx, key)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	}
	assert.Equal(t, 2, repo.finds)
	assert.Empty(t, mr.Keys())
}

func TestRateCache_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newRateCacheFixture(t)
	require.NoError(t, c.UpsertRate(ctx, closingRate(t, "4.47")))
	_, err := c.FindRate(ctx, closingRate(t, "1").RateKey)
	require.NoError(t, err)

	require.NoError(t, c.UpsertRate(ctx, closingRate(t, "4.52")))

	got, err := c.FindRate(ctx, closingRate(t, "1").RateKey)
	require.NoError(t, err)
	assert.Equal(t, "4.52", got.Rate.String())
}

func TestRateCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newRateCacheFixture(t, WithTTL(time.Minute), WithKeyPrefix("test:"))
	rate := closingRate(t, "4.47")
	require.NoError(t, c.UpsertRate(ctx, rate))

	_, err := c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.finds)
}

func TestRateCache_CorruptedEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newRateCacheFixture(t)
	rate := closingRate(t, "4.47")
	require.NoError(t, c.UpsertRate(ctx, rate))
	require.NoError(t, mr.Set(c.cacheKey(rate.RateKey), "{not json"))

	got, err := c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.finds)
	assert.Equal(t, "4.47", got.Rate.String())
}

func TestRateCache_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	c, repo, mr := newRateCacheFixture(t)
	rate := closingRate(t, "4.47")
	require.NoError(t, c.UpsertRate(ctx, rate))
	mr.Close()

	got, err := c.FindRate(ctx, rate.RateKey)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.finds)
	assert.Equal(t, "4.47", got.Rate.String())
}
