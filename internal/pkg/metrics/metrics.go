package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskgate_scans_total",
		Help: "The total number of token analyses by resulting risk level",
	}, []string{"risk_level"})

	RuleHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskgate_rule_hits_total",
		Help: "Total rule evaluator triggers by rule",
	}, []string{"rule"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskgate_cache_hits_total",
		Help: "Coordinator cache hits by service key",
	}, []string{"service"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskgate_cache_misses_total",
		Help: "Coordinator cache misses by service key",
	}, []string{"service"})

	StaleFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskgate_stale_fallbacks_total",
		Help: "Expired cache entries served in place of a failed or refused call",
	}, []string{"service"})

	BreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "riskgate_breaker_open",
		Help: "1 when the circuit for a service key is open",
	}, []string{"service"})

	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskgate_provider_latency_seconds",
		Help:    "External provider call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)
