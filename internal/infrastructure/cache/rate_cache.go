// Package cache provides Redis-backed read-through caches for kernel lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultRateTTL       = 24 * time.Hour
	defaultRateKeyPrefix = "fx:rate:"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RateCache is a read-through cache over an fx.RateRepository. Only found
// rates are cached; a missing rate always reaches the repository. Redis
// failures fall back to the repository.
type RateCache struct {
	next      fx.RateRepository
	client    redis.Cmdable
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// RateCacheOption is a functional option for configuring the cache
type RateCacheOption func(*RateCache)

// WithTTL sets how long cached rates live
func WithTTL(ttl time.Duration) RateCacheOption {
	return func(c *RateCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the cache keys
func WithKeyPrefix(prefix string) RateCacheOption {
	return func(c *RateCache) {
		c.keyPrefix = prefix
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) RateCacheOption {
	return func(c *RateCache) {
		c.logger = logger
	}
}

// NewRateCache wraps next with a Redis cache
func NewRateCache(next fx.RateRepository, client redis.Cmdable, opts ...RateCacheOption) *RateCache {
	c := &RateCache{
		next:      next,
		client:    client,
		ttl:       defaultRateTTL,
		keyPrefix: defaultRateKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cachedRate struct {
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source,omitempty"`
}

// FindRate returns the cached rate or loads and caches it
func (c *RateCache) FindRate(ctx context.Context, key fx.RateKey) (*fx.Rate, error) {
	key = key.Normalized()
	cacheKey := c.cacheKey(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var cached cachedRate
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.Debug("Cache hit for rate", zap.String("key", cacheKey))
			return &fx.Rate{RateKey: key, Rate: cached.Rate, Source: cached.Source}, nil
		}
		c.logger.Warn("Discarding corrupted rate cache entry", zap.String("key", cacheKey))
		_ = c.client.Del(ctx, cacheKey)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Rate cache unavailable", zap.String("key", cacheKey), zap.Error(err))
	}

	rate, err := c.next.FindRate(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(ctx, cacheKey, rate)
	return rate, nil
}

// UpsertRate writes through to the repository and evicts the cached entry
func (c *RateCache) UpsertRate(ctx context.Context, rate *fx.Rate) error {
	if err := c.next.UpsertRate(ctx, rate); err != nil {
		return err
	}
	return c.Invalidate(ctx, rate.RateKey)
}

// Invalidate evicts the cached rate for key
func (c *RateCache) Invalidate(ctx context.Context, key fx.RateKey) error {
	if err := c.client.Del(ctx, c.cacheKey(key.Normalized())).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rate cache: %w", err)
	}
	return nil
}

func (c *RateCache) store(ctx context.Context, cacheKey string, rate *fx.Rate) {
	data, err := json.Marshal(cachedRate{Rate: rate.Rate, Source: rate.Source})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache rate", zap.String("key", cacheKey), zap.Error(err))
	}
}

func (c *RateCache) cacheKey(key fx.RateKey) string {
	return fmt.Sprintf("%s%s:%s:%s:%s:%s", c.keyPrefix,
		key.TenantID, key.FromCurrency, key.ToCurrency, key.RateType, key.RateDate.Format("2006-01-02"))
}

var _ fx.RateRepository = (*RateCache)(nil)
