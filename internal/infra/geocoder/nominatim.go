// Package geocoder provides a Nominatim-backed implementation of the
// trip.GeocodeProvider interface. It resolves free-text place names to
// coordinates with retry, circuit breaker, and provider-mandated rate
// limiting.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"travel-concierge/internal/config"
	"travel-concierge/internal/domain/entity"
	"travel-concierge/internal/observability/metrics"
	"travel-concierge/internal/resilience/circuitbreaker"
	"travel-concierge/internal/resilience/retry"
	"travel-concierge/internal/usecase/trip"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const endpointName = "geocoder"

// Client resolves place names via the Nominatim search API.
// It includes circuit breaker and retry logic, and enforces the provider's
// absolute 1 request/second usage policy with a token bucket.
//
// Thread safety: Client is safe for concurrent use.
type Client struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter
	baseURL        string
	userAgent      string
	timeout        time.Duration
}

// NewClient creates a new Nominatim client.
// The rate limiter is shared across all queries going through this client,
// so concurrent user queries cannot exceed the provider's request budget.
func NewClient(client *http.Client, cfg config.ProviderConfig, userAgent string, rps float64) *Client {
	return &Client{
		client:         client,
		circuitBreaker: circuitbreaker.Get(circuitbreaker.GeocoderConfig()),
		retryConfig:    retry.GeocoderConfig(),
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:        cfg.BaseURL,
		userAgent:      userAgent,
		timeout:        cfg.Timeout,
	}
}

// lookupResult carries a geocoding hit through the circuit breaker.
// "No such place" is a successful provider response, not a failure, so it
// must not feed the breaker's failure counters.
type lookupResult struct {
	coords entity.Coordinates
	found  bool
}

// Locate resolves a place name to coordinates.
// Returns an error wrapping entity.ErrLocationNotFound when the provider
// has no match for the name.
func (c *Client) Locate(ctx context.Context, place string) (entity.Coordinates, error) {
	start := time.Now()
	var result lookupResult

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doLookup(ctx, place)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("geocoder circuit breaker open, request rejected",
					slog.String("endpoint", endpointName),
					slog.String("place", place),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		result = cbResult.(lookupResult)
		return nil
	})

	if retryErr != nil {
		metrics.RecordOutboundRequest(endpointName, trip.Classify(retryErr).String(), time.Since(start))
		return entity.Coordinates{}, retryErr
	}

	metrics.RecordOutboundRequest(endpointName, "success", time.Since(start))
	if !result.found {
		return entity.Coordinates{}, fmt.Errorf("%w: %q", entity.ErrLocationNotFound, place)
	}
	return result.coords, nil
}

// doLookup performs one search request without retry or circuit breaker.
func (c *Client) doLookup(ctx context.Context, place string) (interface{}, error) {
	// Honor the provider's rate limit before spending the attempt.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", place)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", retry.ErrAttemptTimeout, c.timeout)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(hits) == 0 {
		return lookupResult{}, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", hits[0].Lon, err)
	}

	coords := entity.Coordinates{Lat: lat, Lon: lon}
	if err := coords.Validate(); err != nil {
		return nil, fmt.Errorf("provider returned invalid coordinates: %w", err)
	}

	return lookupResult{coords: coords, found: true}, nil
}
