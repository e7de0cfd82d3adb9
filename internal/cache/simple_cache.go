package cache

import (
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// SimpleCache is a map-backed cache with per-item TTL. There is no
// background janitor; expired entries are skipped on read and removed by
// PurgeExpired or by the next write to the same key.
type SimpleCache[K comparable, V any] struct {
	// nil when the cache is not goroutine-safe
	mu    *sync.Mutex
	now   func() time.Time
	items map[K]entry[V]
}

// Options controls construction of a SimpleCache.
type Options struct {
	// ConcurrencySafe guards all operations with a mutex.
	ConcurrencySafe bool
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

// NewSimpleCache constructs a new SimpleCache with the given options.
func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	c := &SimpleCache[K, V]{
		now:   opts.Clock,
		items: make(map[K]entry[V]),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.ConcurrencySafe {
		c.mu = &sync.Mutex{}
	}
	return c
}

func (c *SimpleCache[K, V]) lock() func() {
	if c.mu == nil {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

// Get implements Cache.Get.
func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	defer c.lock()()

	var zero V
	e, ok := c.items[key]
	if !ok || e.expired(c.now()) {
		return zero, false
	}
	return e.value, true
}

// Set implements Cache.Set.
func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	defer c.lock()()
	c.items[key] = entry[V]{value: value, expiresAt: c.expiry(ttl)}
}

// Upsert implements Cache.Upsert.
func (c *SimpleCache[K, V]) Upsert(key K, ttl time.Duration, fn func(old V, found bool) V) (V, time.Time) {
	defer c.lock()()

	e, ok := c.items[key]
	if !ok || e.expired(c.now()) {
		var zero V
		e = entry[V]{value: fn(zero, false), expiresAt: c.expiry(ttl)}
	} else {
		e.value = fn(e.value, true)
	}
	c.items[key] = e
	return e.value, e.expiresAt
}

// Delete implements Cache.Delete.
func (c *SimpleCache[K, V]) Delete(key K) {
	defer c.lock()()
	delete(c.items, key)
}

// Len implements Cache.Len. It counts only non-expired entries.
func (c *SimpleCache[K, V]) Len() int {
	defer c.lock()()
	now := c.now()
	count := 0
	for _, e := range c.items {
		if !e.expired(now) {
			count++
		}
	}
	return count
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *SimpleCache[K, V]) PurgeExpired() {
	defer c.lock()()
	now := c.now()
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
		}
	}
}

func (c *SimpleCache[K, V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// Ensure SimpleCache implements Cache at compile time.
var _ Cache[any, any] = (*SimpleCache[any, any])(nil)
