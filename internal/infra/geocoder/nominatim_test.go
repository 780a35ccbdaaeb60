package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"travel-concierge/internal/config"
	"travel-concierge/internal/domain/entity"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.ProviderConfig{BaseURL: baseURL, Timeout: 2 * time.Second}
	// High rate limit so tests never wait on the token bucket.
	return NewClient(&http.Client{}, cfg, "travel-concierge-test/1.0", 1000)
}

func TestLocate_Success(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"12.9716","lon":"77.5946"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	coords, err := c.Locate(context.Background(), "bangalore")

	require.NoError(t, err)
	assert.Equal(t, "bangalore", gotQuery)
	assert.Equal(t, "travel-concierge-test/1.0", gotUA)
	assert.InDelta(t, 12.9716, coords.Lat, 0.0001)
	assert.InDelta(t, 77.5946, coords.Lon, 0.0001)
}

func TestLocate_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Locate(context.Background(), "nowhereistan")

	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrLocationNotFound)
}

func TestLocate_NotFoundDoesNotFeedBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	// Well past the consecutive-failure threshold: a run of honest
	// "no such place" responses must never open the circuit.
	for i := 0; i < 5; i++ {
		_, err := c.Locate(context.Background(), "nowhereistan")
		require.ErrorIs(t, err, entity.ErrLocationNotFound)
	}

	assert.Equal(t, gobreaker.StateClosed, c.circuitBreaker.State())
}

func TestLocate_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail twice, then recover: the retry layer should absorb the blip.
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.retryConfig.InitialDelay = 5 * time.Millisecond

	coords, err := c.Locate(context.Background(), "paris")

	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.InDelta(t, 48.8566, coords.Lat, 0.0001)
}

func TestLocate_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.retryConfig.InitialDelay = 5 * time.Millisecond

	_, err := c.Locate(context.Background(), "paris")

	require.Error(t, err)
	assert.False(t, errors.Is(err, entity.ErrLocationNotFound))
	assert.Equal(t, int32(1), hits.Load(), "4xx responses must not be retried")

	// Clear the failure run so later tests see a closed breaker.
	resetSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer resetSrv.Close()
	c.baseURL = resetSrv.URL
	_, _ = c.Locate(context.Background(), "paris")
}

func TestLocate_InvalidCoordinatesRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"912.0","lon":"77.0"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.retryConfig.InitialDelay = 5 * time.Millisecond

	_, err := c.Locate(context.Background(), "glitchville")
	require.Error(t, err)

	resetSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer resetSrv.Close()
	c.baseURL = resetSrv.URL
	_, _ = c.Locate(context.Background(), "glitchville")
}
