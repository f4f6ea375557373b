package resilience

import (
	"sync"
	"time"

	"github.com/TokenLens/riskgate/internal/pkg/logger"
)

type cacheEntry[V any] struct {
	data      V
	timestamp time.Time
	ttl       time.Duration
}

func (e cacheEntry[V]) expired(now time.Time) bool {
	return now.After(e.timestamp.Add(e.ttl))
}

// Cache is a TTL key-value store. Entries past their TTL are treated as
// absent and evicted on access; a janitor sweep bounds worst-case memory for
// keys nobody reads again. There is no size-based eviction: callers choose
// TTLs per data volatility (prices minutes, contract metadata hours).
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]cacheEntry[V]

	stopOnce sync.Once
	stop     chan struct{}
}

func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]cacheEntry[V]),
		stop:    make(chan struct{}),
	}
}

// Get returns the fresh value for key. An expired entry is evicted and
// reported absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if e.expired(time.Now()) {
		delete(c.entries, key)
		return zero, false
	}
	return e.data, true
}

// Fresh returns the value for key only if it is within its TTL, without
// evicting an expired entry. The coordinator reads through this so an entry
// that just expired stays available for the stale-fallback path; the janitor
// sweep collects it eventually.
func (c *Cache[V]) Fresh(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return zero, false
	}
	return e.data, true
}

// GetStale returns the value for key even when it has expired, without
// evicting it. Used for the stale-fallback path when a fresh fetch cannot be
// made; availability over freshness.
func (c *Cache[V]) GetStale(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	return e.data, true
}

func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{data: value, timestamp: time.Now(), ttl: ttl}
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache[V]) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor runs the periodic sweep in a background goroutine until Stop
// is called.
func (c *Cache[V]) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					logger.Debug("cache sweep", "evicted", n)
				}
			}
		}
	}()
}

func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
