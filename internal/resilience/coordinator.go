package resilience

import (
	"context"
	"time"

	"github.com/TokenLens/riskgate/internal/pkg/apperrors"
	"github.com/TokenLens/riskgate/internal/pkg/logger"
	"github.com/TokenLens/riskgate/internal/pkg/metrics"
)

// errorRateDecay is the weight of the newest outcome in the exponentially
// decayed per-key error rate.
const errorRateDecay = 0.1

// CallStats is the rolling per-service-key accounting kept by the
// coordinator. Operational visibility only, not part of the call contract.
type CallStats struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	ErrorRate     float64 `json:"error_rate"`
}

// Stats is the getStats-style summary exposed over /v1/stats.
type Stats struct {
	CacheSize int                        `json:"cache_size"`
	Services  map[string]CallStats       `json:"services"`
	Health    map[string]ServiceHealth   `json:"health"`
	Windows   map[string]RateLimitWindow `json:"rate_windows"`
}

// Coordinator wraps every external call with TTL caching, fixed-window rate
// limiting, circuit breaking and stale-cache fallback. One instance is shared
// by all callers in a process; tests construct their own.
type Coordinator struct {
	cache   *Cache[any]
	limiter *WindowLimiter
	health  *HealthTracker
	stats   *statsBook
}

type CoordinatorConfig struct {
	RateWindow       time.Duration
	RateMaxRequests  int
	BreakerThreshold int
	BreakerReset     time.Duration
}

func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	return &Coordinator{
		cache:   NewCache[any](),
		limiter: NewWindowLimiter(cfg.RateWindow, cfg.RateMaxRequests),
		health:  NewHealthTracker(cfg.BreakerThreshold, cfg.BreakerReset),
		stats:   newStatsBook(),
	}
}

// StartJanitor begins the periodic cache sweep; Stop cancels it.
func (co *Coordinator) StartJanitor(interval time.Duration) {
	co.cache.StartJanitor(interval)
}

func (co *Coordinator) Stop() {
	co.cache.Stop()
}

// Invalidate drops the cached value for key, fresh or stale.
func (co *Coordinator) Invalidate(key string) {
	co.cache.Delete(key)
}

// CanExecute reports whether a call for key would currently be admitted.
// Note that asking consumes a rate-limit slot.
func (co *Coordinator) CanExecute(key string) bool {
	return co.limiter.Allow(key) && co.health.Allow(key)
}

func (co *Coordinator) Stats() Stats {
	return Stats{
		CacheSize: co.cache.Len(),
		Services:  co.stats.snapshot(),
		Health:    co.health.Snapshot(),
		Windows:   co.limiter.Snapshot(),
	}
}

// Options controls a single Execute call.
type Options struct {
	TTL          time.Duration
	ForceRefresh bool
}

// Execute runs work under key with full protection: a fresh cache hit
// short-circuits without calling work; a refused call (window exhausted or
// circuit open) falls back to a stale entry or fails with a typed exhausted
// error; a failed call counts toward the breaker and likewise prefers a
// stale entry over surfacing the failure.
//
// Concurrent calls for the same key may both miss the cache and run work
// redundantly; the coordinator does not de-duplicate in-flight requests.
func Execute[T any](ctx context.Context, co *Coordinator, key string, opts Options, work func(context.Context) (T, error)) (T, error) {
	var zero T
	co.stats.request(key)

	if !opts.ForceRefresh {
		if v, ok := co.cache.Fresh(key); ok {
			co.stats.hit(key)
			metrics.CacheHits.WithLabelValues(key).Inc()
			return v.(T), nil
		}
	}
	co.stats.miss(key)
	metrics.CacheMisses.WithLabelValues(key).Inc()

	if !co.CanExecute(key) {
		if v, ok := co.cache.GetStale(key); ok {
			logger.Warn("serving stale cache, call refused", "service", key)
			metrics.StaleFallbacks.WithLabelValues(key).Inc()
			return v.(T), nil
		}
		return zero, apperrors.NewExhausted(key)
	}

	start := time.Now()
	result, err := work(ctx)
	elapsed := time.Since(start)
	co.stats.latency(key, elapsed)
	metrics.ProviderLatency.WithLabelValues(key).Observe(elapsed.Seconds())

	if err != nil {
		co.stats.outcome(key, false)
		co.health.RecordFailure(key, err)
		if v, ok := co.cache.GetStale(key); ok {
			logger.Warn("serving stale cache after failed call", "service", key, "error", err)
			metrics.StaleFallbacks.WithLabelValues(key).Inc()
			return v.(T), nil
		}
		return zero, apperrors.NewUpstream(key, err)
	}

	co.stats.outcome(key, true)
	co.health.RecordSuccess(key)
	co.cache.Set(key, result, opts.TTL)
	return result, nil
}

// BatchOptions controls ExecuteBatch.
type BatchOptions struct {
	BatchSize    int
	Delay        time.Duration
	TTL          time.Duration
	ForceRefresh bool
}

// ExecuteBatch runs work for every item in sequential batches of BatchSize,
// dispatching the items of one batch concurrently through Execute. A failed
// item is logged and dropped from the result list, not retried; result order
// is therefore not guaranteed to match input order. Batch k+1 never starts
// before batch k has settled and Delay has elapsed. Cancelling ctx stops the
// dispatch of further batches but not siblings already in flight.
func ExecuteBatch[I, R any](ctx context.Context, co *Coordinator, items []I, keyFn func(I) string, opts BatchOptions, work func(context.Context, I) (R, error)) ([]R, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = 5
	}

	results := make([]R, 0, len(items))
	for batchStart := 0; batchStart < len(items); batchStart += size {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(batchStart+size, len(items))
		batch := items[batchStart:end]

		type settled struct {
			value R
			err   error
			key   string
		}
		ch := make(chan settled, len(batch))
		for _, item := range batch {
			go func(item I) {
				key := keyFn(item)
				v, err := Execute(ctx, co, key, Options{TTL: opts.TTL, ForceRefresh: opts.ForceRefresh}, func(ctx context.Context) (R, error) {
					return work(ctx, item)
				})
				ch <- settled{value: v, err: err, key: key}
			}(item)
		}
		for range batch {
			s := <-ch
			if s.err != nil {
				logger.Warn("batch item failed", "service", s.key, "error", s.err)
				continue
			}
			results = append(results, s.value)
		}

		if end < len(items) && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return results, nil
}
