// Package tracing provides OpenTelemetry tracing integration.
//
// The tracer is used to create spans around the travel query pipeline:
// the HTTP middleware opens a server span, and the trip service opens child
// spans for geocoding and the weather/places fan-out.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the travel-concierge application.
var tracer = otel.Tracer("travel-concierge")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "trip.fanout")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
