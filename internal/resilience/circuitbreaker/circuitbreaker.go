// Package circuitbreaker provides circuit breakers for external service calls.
// It uses the github.com/sony/gobreaker library to prevent cascading failures:
// after a run of consecutive failures the breaker opens and rejects calls
// without touching the network until a cooldown elapses.
package circuitbreaker

import (
	"log/slog"
	"time"

	"travel-concierge/internal/observability/metrics"

	"github.com/sony/gobreaker"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the endpoint identity the breaker guards, used for logging and metrics
	Name string

	// MaxRequests is the maximum number of requests allowed in half-open state
	MaxRequests uint32

	// ConsecutiveFailures is the run of consecutive failures that trips the circuit.
	// Any success while closed resets the run, so unrelated transient blips
	// spread over time never trip the breaker.
	ConsecutiveFailures uint32

	// Cooldown is how long to wait in open state before allowing a probe
	Cooldown time.Duration
}

// DefaultConfig returns a default configuration for circuit breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		ConsecutiveFailures: 3,
		Cooldown:            30 * time.Second,
	}
}

// GeocoderConfig returns configuration for the geocoding endpoint.
func GeocoderConfig() Config {
	return DefaultConfig("geocoder")
}

// WeatherConfig returns configuration for the weather endpoint.
func WeatherConfig() Config {
	return DefaultConfig("weather")
}

// PlacesConfig returns configuration for the places endpoint.
func PlacesConfig() Config {
	return DefaultConfig("places")
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with additional functionality.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.SetCircuitBreakerState(name, stateValue(to))
			metrics.RecordCircuitBreakerTransition(name, to.String())
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs the given function through the circuit breaker.
// If the circuit is open, it returns gobreaker.ErrOpenState immediately
// without invoking the function.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// stateValue maps a gobreaker state to the numeric gauge value exported
// via metrics: 0 closed, 1 half-open, 2 open.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
