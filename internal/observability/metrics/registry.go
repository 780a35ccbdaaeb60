package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Buckets capture fast responses (5-25ms), normal responses (50-250ms)
	// and slow responses up to the outbound worst case (timeout x attempts).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Outbound metrics track calls to the external travel data providers
var (
	// OutboundRequestsTotal counts resilient provider calls by endpoint and result.
	// Result is one of: success, timeout, http_error, circuit_open, exhausted_retries.
	OutboundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_requests_total",
			Help: "Total number of outbound provider calls by final result",
		},
		[]string{"endpoint", "result"},
	)

	// OutboundRequestDuration measures the full resilient call duration,
	// including backoff sleeps and all attempts.
	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Outbound provider call duration in seconds, retries included",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState exports the current breaker state per endpoint:
	// 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per endpoint (0=closed, 1=half-open, 2=open)",
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerTransitionsTotal counts breaker state transitions per endpoint
	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"endpoint", "to"},
	)
)

// Query metrics track the end-to-end travel query pipeline
var (
	// QueriesTotal counts travel queries by detected intent and outcome status
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_queries_total",
			Help: "Total number of travel queries processed",
		},
		[]string{"intent", "status"},
	)

	// QueryDuration measures end-to-end query handling time
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_query_duration_seconds",
			Help:    "Time taken to answer a travel query end to end",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	// FanoutDuration measures the parallel weather+places join time
	FanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_fanout_duration_seconds",
			Help:    "Time spent waiting for the weather and places calls to settle",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)
