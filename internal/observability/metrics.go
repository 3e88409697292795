package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_rate_limited_total",
		Help: "Requests rejected with 429",
	}, []string{"backend"})

	// CacheResultsTotal counts response cache lookups by result (hit, miss, bypass).
	CacheResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_cache_results_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})

	// RedisErrorsTotal counts Redis errors by operation.
	RedisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})
)
