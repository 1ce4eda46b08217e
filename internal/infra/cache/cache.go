// Package cache provides a small in-memory TTL cache with
// stale-while-revalidate semantics for upstream API lookups.
package cache

import (
	"context"
	"sync"
	"time"
)

// Loader fetches a value for a key on miss or refresh.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// TTLCache caches loaded values for a fixed TTL. A hit inside the TTL returns
// immediately. A hit past the TTL returns the stale value and refreshes it in
// the background, so callers never block on the upstream for a key seen
// recently. Only a full miss loads synchronously.
type TTLCache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	entries    map[K]entry[V]
	refreshing map[K]struct{}
	loader     Loader[K, V]

	now func() time.Time // overridable in tests
}

// New creates a TTLCache with the given TTL and loader.
func New[K comparable, V any](ttl time.Duration, loader Loader[K, V]) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:        ttl,
		entries:    make(map[K]entry[V]),
		refreshing: make(map[K]struct{}),
		loader:     loader,
		now:        time.Now,
	}
}

// Get returns the cached value for key, loading it on a miss. Past the TTL
// the stale value is returned and a single background refresh is started.
func (c *TTLCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok {
		age := c.now().Sub(e.fetchedAt)
		if age <= c.ttl {
			c.mu.Unlock()

			return e.value, nil
		}

		// Stale: serve the old value and refresh once in the background.
		if _, inFlight := c.refreshing[key]; !inFlight {
			c.refreshing[key] = struct{}{}
			go c.refresh(key)
		}
		c.mu.Unlock()

		return e.value, nil
	}

	c.mu.Unlock()

	value, err := c.loader(ctx, key)
	if err != nil {
		var zero V

		return zero, err
	}

	c.store(key, value)

	return value, nil
}

// Len returns the number of cached entries.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *TTLCache[K, V]) refresh(key K) {
	// Detached from the caller's context: the caller already got a value and
	// must not be cancelled along with it.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	value, err := c.loader(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.refreshing, key)
	if err != nil {
		// Keep serving the stale entry; the next stale hit retries.
		return
	}

	c.entries[key] = entry[V]{value: value, fetchedAt: c.now()}
}

func (c *TTLCache[K, V]) store(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, fetchedAt: c.now()}
}
