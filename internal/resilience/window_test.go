package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowLimiterRejectsPastCap(t *testing.T) {
	l := NewWindowLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("svc") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	// The (N+1)-th request in the window is rejected, not queued
	assert.False(t, l.Allow("svc"))
}

func TestWindowLimiterResetsAfterWindow(t *testing.T) {
	l := NewWindowLimiter(30*time.Millisecond, 1)

	assert.True(t, l.Allow("svc"))
	assert.False(t, l.Allow("svc"))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, l.Allow("svc"))
}

func TestWindowLimiterKeysAreIndependent(t *testing.T) {
	l := NewWindowLimiter(time.Minute, 1)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestWindowLimiterSnapshot(t *testing.T) {
	l := NewWindowLimiter(time.Minute, 10)
	l.Allow("svc")
	l.Allow("svc")

	snap := l.Snapshot()
	assert.Equal(t, 2, snap["svc"].Requests)
	assert.False(t, snap["svc"].ResetTime.IsZero())
}
