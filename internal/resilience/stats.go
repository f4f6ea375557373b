package resilience

import (
	"sync"
	"time"
)

type statsBook struct {
	mu       sync.Mutex
	services map[string]*CallStats
}

func newStatsBook() *statsBook {
	return &statsBook{services: make(map[string]*CallStats)}
}

func (b *statsBook) entry(key string) *CallStats {
	s, ok := b.services[key]
	if !ok {
		s = &CallStats{}
		b.services[key] = s
	}
	return s
}

func (b *statsBook) request(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(key).TotalRequests++
}

func (b *statsBook) hit(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(key).CacheHits++
}

func (b *statsBook) miss(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(key).CacheMisses++
}

func (b *statsBook) latency(key string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.entry(key)
	ms := float64(d.Milliseconds())
	calls := float64(s.TotalRequests - s.CacheHits)
	if calls < 1 {
		calls = 1
	}
	// Running average over the calls that actually went out
	s.AvgLatencyMs += (ms - s.AvgLatencyMs) / calls
}

func (b *statsBook) outcome(key string, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.entry(key)
	observed := 0.0
	if !success {
		observed = 1.0
	}
	s.ErrorRate = s.ErrorRate*(1-errorRateDecay) + observed*errorRateDecay
}

func (b *statsBook) snapshot() map[string]CallStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]CallStats, len(b.services))
	for key, s := range b.services {
		out[key] = *s
	}
	return out
}
