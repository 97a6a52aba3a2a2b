package cache

import (
	"sync"
	"time"
)

// entry is a cached value with its expiry
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a small keyed cache with per-entry expiry. It backs the merged
// field schema per entity kind, so the keyspace is tiny and no eviction
// policy beyond TTL is needed. Safe for concurrent use.
type TTLCache struct {
	mu      sync.RWMutex
	items   map[string]entry
	ttl     time.Duration
	hits    uint64
	misses  uint64
	metrics bool
}

// New creates a TTLCache. ttl <= 0 disables expiry.
func New(ttl time.Duration, enableMetrics bool) *TTLCache {
	return &TTLCache{
		items:   make(map[string]entry),
		ttl:     ttl,
		metrics: enableMetrics,
	}
}

// Get retrieves a value, treating expired entries as absent. Expired entries
// are deleted under the same write lock as the lookup, so a concurrent Set of
// a fresh value can never be torn down by a stale read.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok && !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.items, key)
		ok = false
	}

	if c.metrics {
		if ok {
			c.hits++
		} else {
			c.misses++
		}
	}

	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key
func (c *TTLCache) Set(key string, value interface{}) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.items[key] = entry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Invalidate removes a single key
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes all entries
func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
}

// Stats returns hit and miss counts (zero unless metrics are enabled)
func (c *TTLCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the current number of entries, expired ones included
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
