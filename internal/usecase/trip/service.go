// Package trip orchestrates travel queries: parse the free-text question,
// resolve the destination, fan out to the weather and places providers in
// parallel, and compose the reply. All retry and circuit-breaker logic lives
// in the provider clients; by the time outcomes reach the composer it has
// already run to exhaustion.
package trip

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"travel-concierge/internal/domain/entity"
	"travel-concierge/internal/observability/logging"
	"travel-concierge/internal/observability/metrics"
	"travel-concierge/internal/observability/tracing"

	"golang.org/x/sync/errgroup"
)

// GeocodeProvider resolves a free-text place name to coordinates.
// It returns an error wrapping entity.ErrLocationNotFound when the place
// does not exist.
type GeocodeProvider interface {
	Locate(ctx context.Context, place string) (entity.Coordinates, error)
}

// WeatherProvider fetches the current weather for a location.
type WeatherProvider interface {
	Current(ctx context.Context, coords entity.Coordinates) (*entity.WeatherReading, error)
}

// PlacesProvider finds named attractions near a location.
type PlacesProvider interface {
	Nearby(ctx context.Context, coords entity.Coordinates) ([]entity.Attraction, error)
}

// Service answers travel queries.
type Service struct {
	Geocoder GeocodeProvider
	Weather  WeatherProvider
	Places   PlacesProvider
}

// NewService creates a trip Service with the provided providers.
func NewService(geocoder GeocodeProvider, weather WeatherProvider, places PlacesProvider) *Service {
	return &Service{
		Geocoder: geocoder,
		Weather:  weather,
		Places:   places,
	}
}

// Answer processes one free-text travel query end to end and returns the reply.
// Provider failures are absorbed into the reply text; the returned error is
// reserved for caller-level context cancellation.
func (s *Service) Answer(ctx context.Context, input string) (string, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	destination, intent := ParseQuery(input)
	if destination == "" {
		metrics.RecordQuery(string(intent), "not_found", time.Since(start))
		return MsgPlaceNotFound, nil
	}

	ctx, span := tracing.GetTracer().Start(ctx, "trip.answer")
	defer span.End()

	coords, err := s.Geocoder.Locate(ctx, destination)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		reason := Classify(err)
		logger.Warn("geocoding failed",
			slog.String("destination", destination),
			slog.String("reason", string(reason)),
			slog.Any("error", err))

		// A destination that does not exist gets the fixed not-found message;
		// no weather or places requests are dispatched either way.
		if reason == ReasonLocationNotFound {
			metrics.RecordQuery(string(intent), "not_found", time.Since(start))
			return MsgPlaceNotFound, nil
		}
		metrics.RecordQuery(string(intent), "failed", time.Since(start))
		return MsgAllUnavailable, nil
	}

	weather, places := s.fanOut(ctx, intent, coords)

	reply := Compose(destination, intent, weather, places)
	metrics.RecordQuery(string(intent), queryStatus(intent, weather, places), time.Since(start))

	logger.Info("travel query answered",
		slog.String("destination", destination),
		slog.String("intent", string(intent)),
		slog.String("weather_result", weather.Reason.String()),
		slog.String("places_result", places.Reason.String()),
		slog.Duration("duration", time.Since(start)))

	return reply, nil
}

// fanOut runs the weather and places lookups concurrently and waits for both
// to settle. Each side runs through its own breaker-guarded resilient client
// and is bounded by its own timeout and retry budget; one side failing never
// cancels the other, so a fast success is always kept while the slow side
// finishes. Sides the intent does not request are skipped entirely.
func (s *Service) fanOut(ctx context.Context, intent Intent, coords entity.Coordinates) (WeatherOutcome, PlacesOutcome) {
	ctx, span := tracing.GetTracer().Start(ctx, "trip.fanout")
	defer span.End()

	start := time.Now()
	var weather WeatherOutcome
	var places PlacesOutcome

	var eg errgroup.Group

	if intent == IntentWeather || intent == IntentBoth {
		eg.Go(func() error {
			reading, err := s.Weather.Current(ctx, coords)
			if err != nil {
				weather = WeatherOutcome{Reason: Classify(err)}
				return nil // captured as an outcome, never propagated
			}
			weather = WeatherOutcome{Reading: reading}
			return nil
		})
	}

	if intent == IntentPlaces || intent == IntentBoth {
		eg.Go(func() error {
			attractions, err := s.Places.Nearby(ctx, coords)
			if err != nil {
				places = PlacesOutcome{Reason: Classify(err)}
				return nil
			}
			places = PlacesOutcome{Attractions: attractions}
			return nil
		})
	}

	// Join, not race: both outcomes are always collected.
	_ = eg.Wait()
	metrics.RecordFanout(time.Since(start))

	return weather, places
}

// queryStatus summarizes a query result for metrics:
// "ok" when everything requested succeeded, "partial" when one of two sides
// did, "failed" when nothing did.
func queryStatus(intent Intent, weather WeatherOutcome, places PlacesOutcome) string {
	switch intent {
	case IntentWeather:
		if weather.OK() {
			return "ok"
		}
		return "failed"
	case IntentPlaces:
		if places.OK() {
			return "ok"
		}
		return "failed"
	default:
		switch {
		case weather.OK() && places.OK():
			return "ok"
		case weather.OK() || places.OK():
			return "partial"
		default:
			return "failed"
		}
	}
}
