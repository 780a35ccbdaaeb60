// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, in-flight)
//   - Outbound provider call metrics (result, duration)
//   - Circuit breaker state and transitions
//   - Travel query pipeline metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "travel-concierge/internal/observability/metrics"
//
//	func lookupWeather(ctx context.Context) {
//	    start := time.Now()
//	    // ... call the weather provider ...
//	    metrics.RecordOutboundRequest("weather", "success", time.Since(start))
//	}
package metrics
