// Package cache is a process-wide query cache with prefix invalidation.
//
// Entries live until they are invalidated. A stale entry stays in place so
// that Len reports it, but the next Query for its key refetches.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/truccaai/trucca/internal/logging"
)

// Key is an ordered tuple such as (resource, page, limit, keyword, sortKey, sortDir).
type Key []any

// String renders the key as its parts joined by "\x1f".
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, "\x1f")
}

// HasPrefix reports whether the first len(prefix) parts of k equal prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if fmt.Sprint(k[i]) != fmt.Sprint(prefix[i]) {
			return false
		}
	}
	return true
}

type entry struct {
	key   Key
	value any
	stale bool
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int
	Misses int
}

// flight is a fetch in progress. An invalidation that reaches it before it
// finishes marks it stale and its result is not stored.
type flight struct {
	key   Key
	stale bool
}

// Cache stores the last successful result per key.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]*flight
	stats    Stats
	group    singleflight.Group
	logger   *zap.Logger
}

// New creates an empty cache.
func New(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries:  make(map[string]*entry),
		inflight: make(map[string]*flight),
		logger:   logger.With(logging.Component("cache")),
	}
}

// Query returns the cached value for key when present and fresh. Otherwise it
// calls fetch, stores a successful result under key and returns it. Failed
// fetches leave the cache untouched. Concurrent misses on one key share a
// single fetch, unless an invalidation happened between them: a fetch that
// was running when its key was invalidated is neither joined nor stored.
func Query[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	k := key.String()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok && !e.stale {
		if v, ok := e.value.(T); ok {
			c.stats.Hits++
			c.mu.Unlock()
			return v, nil
		}
	}
	c.stats.Misses++
	c.mu.Unlock()

	c.logger.Debug("cache miss", logging.CacheKey(k))

	v, err, _ := c.group.Do(k, func() (any, error) {
		fl := &flight{key: append(Key(nil), key...)}
		c.mu.Lock()
		c.inflight[k] = fl
		c.mu.Unlock()

		res, err := fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.inflight[k] == fl {
			delete(c.inflight, k)
		}
		if err != nil {
			return nil, err
		}
		if fl.stale {
			c.logger.Debug("result invalidated while fetching", logging.CacheKey(k))
			return res, nil
		}
		c.entries[k] = &entry{key: fl.key, value: res}
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate marks every entry whose key starts with prefix as stale and
// returns how many entries changed. Matching fetches still in flight are
// detached so that later queries start a new fetch. An empty prefix matches
// everything.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if !e.stale && e.key.HasPrefix(prefix) {
			e.stale = true
			n++
		}
	}
	for k, fl := range c.inflight {
		if fl.key.HasPrefix(prefix) {
			fl.stale = true
			delete(c.inflight, k)
			c.group.Forget(k)
		}
	}
	c.logger.Debug("cache invalidated", logging.CacheKey(prefix.String()), logging.Count(n))
	return n
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the hit and miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
