package cache

import (
	"context"
	"sync"
	"time"

	ledgerapp "github.com/seedledger/backend/internal/application/ledger"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// InMemoryAvailabilityCache is a process-local availability cache for
// single-instance deployments and tests.
type InMemoryAvailabilityCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	value     decimal.Decimal
	expiresAt time.Time
}

// NewInMemoryAvailabilityCache creates an empty in-memory cache
func NewInMemoryAvailabilityCache() *InMemoryAvailabilityCache {
	return &InMemoryAvailabilityCache{
		entries: make(map[string]inMemoryEntry),
	}
}

// Get returns the cached availability for a series
func (c *InMemoryAvailabilityCache) Get(_ context.Context, series ledger.Series) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[series.Key()]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return decimal.Zero, false, nil
	}
	return entry.value, true, nil
}

// Set stores the availability for a series with a TTL
func (c *InMemoryAvailabilityCache) Set(_ context.Context, series ledger.Series, value decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[series.Key()] = inMemoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached availability for a series
func (c *InMemoryAvailabilityCache) Invalidate(_ context.Context, series ledger.Series) error {
	c.mu.Lock()
	delete(c.entries, series.Key())
	c.mu.Unlock()
	return nil
}

// Ensure InMemoryAvailabilityCache implements AvailabilityCache
var _ ledgerapp.AvailabilityCache = (*InMemoryAvailabilityCache)(nil)
