package query

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies one cached read: operation name plus its parameters.
type Key string

// CollectionKey caches the collection list; every successful write
// invalidates it.
const CollectionKey Key = "books"

// KeyFor derives a cache key from an operation name and its parameters.
// The separator cannot appear in user input that survives URL encoding, so
// distinct parameter tuples never collide.
func KeyFor(op string, params ...string) Key {
	if len(params) == 0 {
		return Key(op)
	}
	return Key(op + "?" + strings.Join(params, "\x1f"))
}

type entry struct {
	value any
	fresh bool
}

// Cache is a keyed read-through cache with in-flight de-duplication.
//
// A read under a fresh key is served from memory. A missing or invalidated
// key triggers exactly one fetch no matter how many callers arrive
// concurrently; all of them observe the same result. Invalidation marks the
// entry stale rather than deleting it, so a failed refetch can still hand
// back the previous value alongside the error.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	group   singleflight.Group
}

// NewCache returns an empty cache ready for use.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// Lookup returns the cached value for key, fetching it when absent or
// stale. On fetch failure the stale value (when one exists) is returned
// together with the error so callers can keep displaying it.
func Lookup[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := c.cached(key); ok {
		return v.(T), nil
	}

	result, err, _ := c.group.Do(string(key), func() (any, error) {
		// A concurrent caller may have completed the fetch while this one
		// waited on the flight group.
		if v, ok := c.cached(key); ok {
			return v, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return value, nil
	})
	if err != nil {
		if v, stale := c.staleValue(key); stale {
			return v.(T), err
		}
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate marks the entry stale so the next read refetches. Invalidating
// an already-stale or absent key is a no-op; two invalidations in a row
// still cause only one refetch.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.fresh = false
	}
}

// Reset drops every entry, stale values included. Used at logout so one
// user's collection never leaks into the next session.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
}

func (c *Cache) cached(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok && e.fresh {
		return e.value, true
	}
	return nil, false
}

func (c *Cache) staleValue(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.value, true
	}
	return nil, false
}

func (c *Cache) store(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, fresh: true}
}
