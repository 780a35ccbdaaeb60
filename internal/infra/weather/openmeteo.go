// Package weather provides an Open-Meteo-backed implementation of the
// trip.WeatherProvider interface.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
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
)

const endpointName = "weather"

// Client fetches current weather from the Open-Meteo forecast API.
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
}

// NewClient creates a new Open-Meteo client.
func NewClient(client *http.Client, cfg config.ProviderConfig, userAgent string) *Client {
	return &Client{
		client:         client,
		circuitBreaker: circuitbreaker.Get(circuitbreaker.WeatherConfig()),
		retryConfig:    retry.WeatherConfig(),
		baseURL:        cfg.BaseURL,
		userAgent:      userAgent,
		timeout:        cfg.Timeout,
	}
}

// forecastResponse mirrors the subset of the Open-Meteo payload we read.
type forecastResponse struct {
	Current struct {
		Time          string   `json:"time"`
		Temperature2M *float64 `json:"temperature_2m"`
	} `json:"current"`
	Hourly struct {
		Time                     []string   `json:"time"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

// Current fetches the current temperature and the precipitation probability
// for the hourly slot matching the current observation time.
func (c *Client) Current(ctx context.Context, coords entity.Coordinates) (*entity.WeatherReading, error) {
	start := time.Now()
	var reading *entity.WeatherReading

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, coords)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("weather circuit breaker open, request rejected",
					slog.String("endpoint", endpointName),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		reading = cbResult.(*entity.WeatherReading)
		return nil
	})

	if retryErr != nil {
		metrics.RecordOutboundRequest(endpointName, trip.Classify(retryErr).String(), time.Since(start))
		return nil, retryErr
	}

	metrics.RecordOutboundRequest(endpointName, "success", time.Since(start))
	return reading, nil
}

// doFetch performs one forecast request without retry or circuit breaker.
func (c *Client) doFetch(ctx context.Context, coords entity.Coordinates) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("current", "temperature_2m")
	params.Set("hourly", "precipitation_probability")
	params.Set("forecast_days", "1")
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/v1/forecast?"+params.Encode(), nil)
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

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if payload.Current.Temperature2M == nil {
		return nil, fmt.Errorf("forecast response has no current temperature")
	}

	return &entity.WeatherReading{
		TemperatureC:      *payload.Current.Temperature2M,
		PrecipProbability: currentSlotProbability(payload),
	}, nil
}

// currentSlotProbability aligns the hourly precipitation series with the
// current observation time. Falls back to the first slot when the current
// time is missing from the series, and reports nothing when the series is
// empty or misaligned.
func currentSlotProbability(payload forecastResponse) *int {
	times := payload.Hourly.Time
	probs := payload.Hourly.PrecipitationProbability
	if len(times) == 0 || len(times) != len(probs) {
		return nil
	}

	idx := 0
	for i, t := range times {
		if t == payload.Current.Time {
			idx = i
			break
		}
	}

	if probs[idx] == nil {
		return nil
	}
	p := int(math.Round(*probs[idx]))
	return &p
}
