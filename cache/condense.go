package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andozai/retrieval/schema"
)

// CondenseCache fronts the condensation call. A fresh entry is returned
// without I/O; on a miss, concurrent callers for the same key collapse into
// one in-flight computation. A failed computation is propagated to every
// waiter and leaves no cache entry behind.
type CondenseCache struct {
	lru   *LRU
	group singleflight.Group
}

// NewCondenseCache builds a condense cache with the given capacity and TTL.
func NewCondenseCache(capacity int, ttl time.Duration) *CondenseCache {
	return &CondenseCache{lru: NewLRU(capacity, ttl)}
}

// Key derives the cache key from language tag and folded query text.
func Key(lang schema.Language, folded string) string {
	return string(lang) + "\x00" + folded
}

// GetOrCompute returns the cached value for key, or runs compute exactly once
// across all concurrent callers and stores its result. The second return
// value reports whether the value came from cache.
func (c *CondenseCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (string, error)) (string, bool, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// Double-check: another flight may have populated the entry
		// between our miss and acquiring the flight.
		if cached, ok := c.lru.Get(key); ok {
			return cached, nil
		}
		val, err := compute(ctx)
		if err != nil {
			return "", err
		}
		c.lru.Set(key, val)
		return val, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// Len reports the number of cached entries.
func (c *CondenseCache) Len() int { return c.lru.Len() }

// Purge drops all cached entries.
func (c *CondenseCache) Purge() { c.lru.Purge() }
