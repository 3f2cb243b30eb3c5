package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is the in-process Cache used in tests and when no Redis
// address is configured. Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	tags    map[string]map[string]struct{}
	group   singleflight.Group
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (c *MemoryCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// GetOrCompute implements Cache.
func (c *MemoryCache) GetOrCompute(ctx context.Context, key string, tags []string, ttl time.Duration, fn ComputeFunc) ([]byte, error) {
	if val, ok := c.get(key); ok {
		return val, nil
	}

	computed, err, _ := c.group.Do(key, func() (any, error) {
		if val, ok := c.get(key); ok {
			return val, nil
		}

		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = memoryEntry{value: val, expiresAt: c.now().Add(ttl)}
		for _, tag := range tags {
			if c.tags[tag] == nil {
				c.tags[tag] = make(map[string]struct{})
			}
			c.tags[tag][key] = struct{}{}
		}
		c.mu.Unlock()
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return computed.([]byte), nil
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tags[tag] {
		delete(c.entries, key)
	}
	delete(c.tags, tag)
	return nil
}
