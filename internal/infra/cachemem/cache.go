package cachemem

import (
	"context"
	"sync"
	"time"

	"agentgate/internal/domain"
)

type Cache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     domain.AuthContext
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// NewWithClock is for tests that need deterministic expiry.
func NewWithClock(now func() time.Time) *Cache {
	cache := New()
	if now != nil {
		cache.now = now
	}
	return cache
}

func (c *Cache) Get(ctx context.Context, key string) (domain.AuthContext, bool, error) {
	if c == nil {
		return domain.AuthContext{}, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return domain.AuthContext{}, false, nil
	}
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return domain.AuthContext{}, false, nil
	}
	return entry.value, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, value domain.AuthContext, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

var _ domain.TokenCache = (*Cache)(nil)
