package metrics

import "time"

// RecordOutboundRequest records the final result of one resilient provider call.
// Result should be "success" or the failure reason (timeout, http_error,
// circuit_open, exhausted_retries).
func RecordOutboundRequest(endpoint, result string, duration time.Duration) {
	OutboundRequestsTotal.WithLabelValues(endpoint, result).Inc()
	OutboundRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetCircuitBreakerState updates the breaker state gauge for an endpoint.
// Value is 0 for closed, 1 for half-open, 2 for open.
func SetCircuitBreakerState(endpoint string, value float64) {
	CircuitBreakerState.WithLabelValues(endpoint).Set(value)
}

// RecordCircuitBreakerTransition counts a breaker state transition.
func RecordCircuitBreakerTransition(endpoint, to string) {
	CircuitBreakerTransitionsTotal.WithLabelValues(endpoint, to).Inc()
}

// RecordQuery records a completed travel query.
// Status should be "ok", "partial", "failed" or "not_found".
func RecordQuery(intent, status string, duration time.Duration) {
	QueriesTotal.WithLabelValues(intent, status).Inc()
	QueryDuration.Observe(duration.Seconds())
}

// RecordFanout records the wall-clock time of one weather+places join.
func RecordFanout(duration time.Duration) {
	FanoutDuration.Observe(duration.Seconds())
}
