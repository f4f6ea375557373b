package resilience

import (
	"sync"
	"time"

	"github.com/TokenLens/riskgate/internal/pkg/metrics"
)

// ServiceHealth is the breaker state for one service key.
type ServiceHealth struct {
	IsHealthy           bool      `json:"is_healthy"`
	LastSuccess         time.Time `json:"last_success"`
	LastFailure         time.Time `json:"last_failure"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	ErrorDetails        string    `json:"error_details,omitempty"`
}

// HealthTracker is a binary circuit breaker per service key. A run of
// consecutive failures past the threshold flips the key unhealthy; after the
// reset timeout has elapsed since the last failure the breaker optimistically
// readmits traffic with a cleared streak. There is no separate trial-probe
// state: the first call after the timeout is the probe.
type HealthTracker struct {
	mu           sync.Mutex
	services     map[string]*ServiceHealth
	threshold    int
	resetTimeout time.Duration
}

func NewHealthTracker(threshold int, resetTimeout time.Duration) *HealthTracker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 5 * time.Minute
	}
	return &HealthTracker{
		services:     make(map[string]*ServiceHealth),
		threshold:    threshold,
		resetTimeout: resetTimeout,
	}
}

func (t *HealthTracker) state(key string) *ServiceHealth {
	h, ok := t.services[key]
	if !ok {
		h = &ServiceHealth{IsHealthy: true}
		t.services[key] = h
	}
	return h
}

// Allow reports whether calls to key may proceed. An unhealthy key whose
// reset timeout has elapsed is reset to healthy here.
func (t *HealthTracker) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.state(key)
	if h.IsHealthy {
		return true
	}
	if time.Since(h.LastFailure) >= t.resetTimeout {
		h.IsHealthy = true
		h.ConsecutiveFailures = 0
		h.ErrorDetails = ""
		metrics.BreakerOpen.WithLabelValues(key).Set(0)
		return true
	}
	return false
}

func (t *HealthTracker) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.state(key)
	h.IsHealthy = true
	h.ConsecutiveFailures = 0
	h.LastSuccess = time.Now()
	h.ErrorDetails = ""
	metrics.BreakerOpen.WithLabelValues(key).Set(0)
}

func (t *HealthTracker) RecordFailure(key string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.state(key)
	h.ConsecutiveFailures++
	h.LastFailure = time.Now()
	if err != nil {
		h.ErrorDetails = err.Error()
	}
	if h.ConsecutiveFailures >= t.threshold {
		h.IsHealthy = false
		metrics.BreakerOpen.WithLabelValues(key).Set(1)
	}
}

// Snapshot returns a copy of every tracked service state.
func (t *HealthTracker) Snapshot() map[string]ServiceHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]ServiceHealth, len(t.services))
	for key, h := range t.services {
		out[key] = *h
	}
	return out
}
