package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheGetWithinTTL(t *testing.T) {
	c := NewCache[string]()
	c.Set("k", "v", 100*time.Millisecond)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.True(t, c.Has("k"))
}

func TestCacheExpiryEvictsOnAccess(t *testing.T) {
	c := NewCache[string]()
	c.Set("k", "v", 20*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to be absent")
	}
	// Lazy eviction removed the entry entirely
	if c.Len() != 0 {
		t.Fatalf("expected entry to be evicted, cache has %d entries", c.Len())
	}
}

func TestCacheGetStaleKeepsExpiredEntry(t *testing.T) {
	c := NewCache[int]()
	c.Set("k", 42, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	v, ok := c.GetStale("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	// GetStale must not evict: the fallback can be served again
	_, ok = c.GetStale("k")
	assert.True(t, ok)
}

func TestCacheSweepRemovesOnlyExpired(t *testing.T) {
	c := NewCache[int]()
	c.Set("old", 1, 10*time.Millisecond)
	c.Set("fresh", 2, time.Minute)
	time.Sleep(20 * time.Millisecond)

	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCacheDelete(t *testing.T) {
	c := NewCache[string]()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	assert.False(t, c.Has("k"))
}
