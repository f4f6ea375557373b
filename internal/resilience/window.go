package resilience

import (
	"sync"
	"time"
)

// RateLimitWindow is the externally visible counter state for one service key.
type RateLimitWindow struct {
	Requests  int       `json:"requests"`
	ResetTime time.Time `json:"reset_time"`
}

// WindowLimiter counts requests per service key in fixed windows. Requests
// past the cap are rejected, never queued; the window resets once the clock
// passes ResetTime. Not a token bucket: upstream APIs publish "N requests per
// 15 minutes" budgets and the counter must mirror them exactly.
type WindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*RateLimitWindow
	length  time.Duration
	max     int
}

func NewWindowLimiter(length time.Duration, max int) *WindowLimiter {
	if length <= 0 {
		length = 15 * time.Minute
	}
	if max <= 0 {
		max = 100
	}
	return &WindowLimiter{
		windows: make(map[string]*RateLimitWindow),
		length:  length,
		max:     max,
	}
}

// Allow consumes one slot for key. It returns false when the current window
// is exhausted.
func (l *WindowLimiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.ResetTime) {
		w = &RateLimitWindow{ResetTime: now.Add(l.length)}
		l.windows[key] = w
	}
	if w.Requests >= l.max {
		return false
	}
	w.Requests++
	return true
}

// Snapshot returns a copy of every active window for introspection.
func (l *WindowLimiter) Snapshot() map[string]RateLimitWindow {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]RateLimitWindow, len(l.windows))
	for key, w := range l.windows {
		out[key] = *w
	}
	return out
}
