package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	ledgerapp "github.com/seedledger/backend/internal/application/ledger"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/seedledger/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

// RedisAvailabilityCache implements the availability cache on Redis.
// Suitable for distributed deployments where multiple instances serve
// availability reads against the same ledger.
type RedisAvailabilityCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisAvailabilityCache creates a cache backed by a new Redis client
func NewRedisAvailabilityCache(cfg *config.RedisConfig) (*RedisAvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAvailabilityCache{
		client:    client,
		keyPrefix: "ledger:available:",
	}, nil
}

// NewRedisAvailabilityCacheWithClient creates a cache with an existing
// Redis client. Useful for testing or when sharing a client.
func NewRedisAvailabilityCacheWithClient(client *redis.Client, keyPrefix string) *RedisAvailabilityCache {
	if keyPrefix == "" {
		keyPrefix = "ledger:available:"
	}
	return &RedisAvailabilityCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached availability for a series
func (c *RedisAvailabilityCache) Get(ctx context.Context, series ledger.Series) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+series.Key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("failed to read availability: %w", err)
	}

	d, err := decimal.NewFromString(val)
	if err != nil {
		// A corrupt value behaves like a miss
		return decimal.Zero, false, nil
	}
	return d, true, nil
}

// Set stores the availability for a series with a TTL
func (c *RedisAvailabilityCache) Set(ctx context.Context, series ledger.Series, value decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+series.Key(), value.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store availability: %w", err)
	}
	return nil
}

// Invalidate drops the cached availability for a series
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, series ledger.Series) error {
	if err := c.client.Del(ctx, c.keyPrefix+series.Key()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAvailabilityCache) Close() error {
	return c.client.Close()
}

// Ensure RedisAvailabilityCache implements AvailabilityCache
var _ ledgerapp.AvailabilityCache = (*RedisAvailabilityCache)(nil)
