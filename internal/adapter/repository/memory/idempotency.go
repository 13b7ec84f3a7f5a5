// Package memory provides in-process fallbacks for the cache adapters,
// used when Redis is not configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the number of cached results; sized for
	// recent activity, not for the full history (the durable store is
	// the source of truth).
	DefaultCapacity = 10000

	// DefaultTTL is how long a cached posting result stays hot.
	DefaultTTL = 6 * time.Hour
)

type entry struct {
	expiresAt time.Time
	value     []byte
}

// IdempotencyCache is a bounded, expiring in-memory cache keyed by
// idempotency key. Safe for concurrent use.
type IdempotencyCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewIdempotencyCache creates a cache with the given capacity and TTL.
// Non-positive values fall back to the defaults.
func NewIdempotencyCache(capacity int, ttl time.Duration) *IdempotencyCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &IdempotencyCache{
		entries:  make(map[string]entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *IdempotencyCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}

	return e.value, true, nil
}

// Set stores value under key. A non-positive ttl uses the cache default.
// When the cache is full, expired entries are dropped first, then the
// entry closest to expiry.
func (c *IdempotencyCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evict(now)
	}

	c.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}

	return nil
}

func (c *IdempotencyCache) evict(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)

	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			continue
		}

		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.expiresAt
		}
	}

	if len(c.entries) >= c.capacity && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Clear drops every entry. The durable store is unaffected.
func (c *IdempotencyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len reports the number of live entries, counting expired ones that
// have not been touched since expiry.
func (c *IdempotencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
