package trip

import (
	"context"
	"errors"

	"travel-concierge/internal/domain/entity"
	"travel-concierge/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// FailureReason classifies why a resilient provider call produced no value.
// Reasons are internal observability detail; the composer translates them
// into user-facing language and never exposes them directly.
type FailureReason string

const (
	// ReasonNone marks a successful outcome.
	ReasonNone FailureReason = ""

	// ReasonTimeout marks a call that exceeded its per-attempt deadline.
	ReasonTimeout FailureReason = "timeout"

	// ReasonHTTPError marks a non-success HTTP response or transport failure.
	ReasonHTTPError FailureReason = "http_error"

	// ReasonCircuitOpen marks a call rejected by an open circuit breaker
	// before any network request was made.
	ReasonCircuitOpen FailureReason = "circuit_open"

	// ReasonExhaustedRetries marks a call that failed on every retry attempt.
	ReasonExhaustedRetries FailureReason = "exhausted_retries"

	// ReasonLocationNotFound marks a geocoding query with no result.
	ReasonLocationNotFound FailureReason = "location_not_found"
)

// String returns the reason as a metrics-friendly label value.
func (r FailureReason) String() string {
	if r == ReasonNone {
		return "success"
	}
	return string(r)
}

// Classify maps an error from a resilient provider call to its failure reason.
// Circuit rejections are checked first: a breaker that opened mid-retry makes
// the retry layer abort with the breaker's error, and that rejection is the
// more useful signal than the exhausted-retries wrapper.
func Classify(err error) FailureReason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		return ReasonCircuitOpen
	case errors.Is(err, entity.ErrLocationNotFound):
		return ReasonLocationNotFound
	case errors.Is(err, retry.ErrAttemptsExhausted):
		return ReasonExhaustedRetries
	case errors.Is(err, retry.ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonHTTPError
	}
}

// WeatherOutcome is the settled result of the weather side of the fan-out.
type WeatherOutcome struct {
	Reading *entity.WeatherReading
	Reason  FailureReason
}

// OK reports whether the weather call produced a reading.
func (o WeatherOutcome) OK() bool {
	return o.Reason == ReasonNone && o.Reading != nil
}

// PlacesOutcome is the settled result of the places side of the fan-out.
type PlacesOutcome struct {
	Attractions []entity.Attraction
	Reason      FailureReason
}

// OK reports whether the places call produced a result list.
// An empty list from a healthy provider still counts as success.
func (o PlacesOutcome) OK() bool {
	return o.Reason == ReasonNone
}
