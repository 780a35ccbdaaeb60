package places

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"travel-concierge/internal/config"
	"travel-concierge/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, maxResults int) *Client {
	t.Helper()
	cfg := config.ProviderConfig{BaseURL: baseURL, Timeout: 2 * time.Second}
	return NewClient(&http.Client{}, cfg, "travel-concierge-test/1.0", 20000, maxResults)
}

func TestNearby_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/interpreter", r.URL.Path)
		assert.Equal(t, "travel-concierge-test/1.0", r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		gotQuery = form.Get("data")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements": [
			{"tags": {"name": "Bangalore Palace", "tourism": "attraction"}},
			{"tags": {"name": "Lalbagh Botanical Garden", "tourism": "attraction"}}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	attractions, err := c.Nearby(context.Background(), entity.Coordinates{Lat: 12.97, Lon: 77.59})

	require.NoError(t, err)
	require.Len(t, attractions, 2)
	assert.Equal(t, "Bangalore Palace", attractions[0].Name)
	assert.Equal(t, "Lalbagh Botanical Garden", attractions[1].Name)

	assert.Contains(t, gotQuery, `"tourism"="attraction"`)
	assert.Contains(t, gotQuery, "around:20000")
	assert.Contains(t, gotQuery, "[out:json]")
}

func TestNearby_DeduplicatesAndCaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`{"elements": [`)
		// Duplicate name, an unnamed node, and more nodes than the cap
		b.WriteString(`{"tags": {"name": "Palace"}},`)
		b.WriteString(`{"tags": {"name": "Palace"}},`)
		b.WriteString(`{"tags": {}},`)
		b.WriteString(`{"tags": {"name": "Garden"}},`)
		b.WriteString(`{"tags": {"name": "Museum"}},`)
		b.WriteString(`{"tags": {"name": "Fort"}}`)
		b.WriteString(`]}`)
		_, _ = w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3)
	attractions, err := c.Nearby(context.Background(), entity.Coordinates{Lat: 12.97, Lon: 77.59})

	require.NoError(t, err)
	require.Len(t, attractions, 3)
	assert.Equal(t, "Palace", attractions[0].Name)
	assert.Equal(t, "Garden", attractions[1].Name)
	assert.Equal(t, "Museum", attractions[2].Name)
}

func TestNearby_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	attractions, err := c.Nearby(context.Background(), entity.Coordinates{Lat: 12.97, Lon: 77.59})

	require.NoError(t, err)
	assert.Empty(t, attractions)
}

func TestNearby_AttemptTimeoutIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			// Stall past the per-attempt deadline on the first try
			time.Sleep(150 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"elements": [{"tags": {"name": "Fort"}}]}`))
	}))
	defer srv.Close()

	cfg := config.ProviderConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}
	c := NewClient(&http.Client{}, cfg, "travel-concierge-test/1.0", 20000, 5)
	c.retryConfig.InitialDelay = 5 * time.Millisecond

	attractions, err := c.Nearby(context.Background(), entity.Coordinates{Lat: 12.97, Lon: 77.59})

	require.NoError(t, err)
	require.Len(t, attractions, 1)
	assert.Equal(t, int32(2), hits.Load(), "first attempt times out, second succeeds")
}

func TestNearby_CallerCancellationStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	c := newTestClient(t, srv.URL, 5)
	_, err := c.Nearby(ctx, entity.Coordinates{Lat: 12.97, Lon: 77.59})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
