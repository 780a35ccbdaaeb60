// Package places provides an Overpass-backed implementation of the
// trip.PlacesProvider interface. It searches OpenStreetMap for tourist
// attractions around a location.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-concierge/internal/config"
	"travel-concierge/internal/domain/entity"
	"travel-concierge/internal/observability/metrics"
	"travel-concierge/internal/resilience/circuitbreaker"
	"travel-concierge/internal/resilience/retry"
	"travel-concierge/internal/usecase/trip"

	"github.com/sony/gobreaker"
)

const endpointName = "places"

// Client searches for nearby attractions via the Overpass API.
// It includes circuit breaker and retry logic for improved reliability.
//
// Thread safety: Client is safe for concurrent use.
type Client struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	baseURL        string
	userAgent      string
	timeout        time.Duration
	radiusMeters   int
	maxResults     int
}

// NewClient creates a new Overpass client.
func NewClient(client *http.Client, cfg config.ProviderConfig, userAgent string, radiusMeters, maxResults int) *Client {
	return &Client{
		client:         client,
		circuitBreaker: circuitbreaker.Get(circuitbreaker.PlacesConfig()),
		retryConfig:    retry.PlacesConfig(),
		baseURL:        cfg.BaseURL,
		userAgent:      userAgent,
		timeout:        cfg.Timeout,
		radiusMeters:   radiusMeters,
		maxResults:     maxResults,
	}
}

// Nearby returns up to the configured number of named attractions around the
// location. Fewer results, including none, is not an error.
func (c *Client) Nearby(ctx context.Context, coords entity.Coordinates) ([]entity.Attraction, error) {
	start := time.Now()
	var attractions []entity.Attraction

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doSearch(ctx, coords)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("places circuit breaker open, request rejected",
					slog.String("endpoint", endpointName),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		attractions = cbResult.([]entity.Attraction)
		return nil
	})

	if retryErr != nil {
		metrics.RecordOutboundRequest(endpointName, trip.Classify(retryErr).String(), time.Since(start))
		return nil, retryErr
	}

	metrics.RecordOutboundRequest(endpointName, "success", time.Since(start))
	return attractions, nil
}

// doSearch performs one Overpass query without retry or circuit breaker.
func (c *Client) doSearch(ctx context.Context, coords entity.Coordinates) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := fmt.Sprintf(`[out:json][timeout:25];
node(around:%d,%f,%f)["tourism"="attraction"];
out tags;`, c.radiusMeters, coords.Lat, coords.Lon)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		c.baseURL+"/api/interpreter", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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

	var payload struct {
		Elements []struct {
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	attractions := make([]entity.Attraction, 0, c.maxResults)
	seen := make(map[string]struct{})
	for _, el := range payload.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		attractions = append(attractions, entity.Attraction{Name: name})
		if len(attractions) >= c.maxResults {
			break
		}
	}

	return attractions, nil
}
