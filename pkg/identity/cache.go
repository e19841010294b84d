package identity

import (
	"context"
	"sync"
)

// DefaultCacheSize bounds the local cache when no capacity is configured.
const DefaultCacheSize = 50000

// Cache maps composite keys to backend node IDs.
//
// A miss is always safe: it degrades to a store lookup. Staleness is not.
// Every operation that changes a node's name or value must invalidate the
// old key and insert the new one before returning to the caller.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, id string)
	Invalidate(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// LocalCache is an in-process bounded Cache. On overflow the whole cache is
// cleared instead of evicting single entries; a full re-warm is cheaper than
// chasing partial-eviction staleness bugs after renaming updates.
type LocalCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]string
}

// NewLocalCache creates a LocalCache holding at most max entries.
// A max <= 0 falls back to DefaultCacheSize.
func NewLocalCache(max int) *LocalCache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &LocalCache{
		max:     max,
		entries: make(map[string]string),
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[key]
	return id, ok
}

func (c *LocalCache) Put(_ context.Context, key, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.entries = make(map[string]string)
	}
	c.entries[key] = id
}

func (c *LocalCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *LocalCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
}

// Len reports the current entry count.
func (c *LocalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
