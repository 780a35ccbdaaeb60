package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travel-concierge/internal/domain/entity"
	tripUC "travel-concierge/internal/usecase/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct{ coords entity.Coordinates }

func (s stubGeocoder) Locate(_ context.Context, _ string) (entity.Coordinates, error) {
	return s.coords, nil
}

type stubWeather struct{ reading *entity.WeatherReading }

func (s stubWeather) Current(_ context.Context, _ entity.Coordinates) (*entity.WeatherReading, error) {
	return s.reading, nil
}

type stubPlaces struct{ attractions []entity.Attraction }

func (s stubPlaces) Nearby(_ context.Context, _ entity.Coordinates) ([]entity.Attraction, error) {
	return s.attractions, nil
}

func newTestService() *tripUC.Service {
	prob := 35
	return tripUC.NewService(
		stubGeocoder{coords: entity.Coordinates{Lat: 12.97, Lon: 77.59}},
		stubWeather{reading: &entity.WeatherReading{TemperatureC: 24, PrecipProbability: &prob}},
		stubPlaces{attractions: []entity.Attraction{{Name: "Bangalore Palace"}}},
	)
}

func postQuery(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Success(t *testing.T) {
	h := Handler{Svc: newTestService()}

	rec := postQuery(t, h, `{"message": "I'm going to Bangalore!"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["reply"], "24°C")
	assert.Contains(t, resp["reply"], "Bangalore Palace")
}

func TestHandler_EmptyMessage(t *testing.T) {
	h := Handler{Svc: newTestService()}

	for _, body := range []string{`{"message": ""}`, `{"message": "   "}`, `{}`} {
		rec := postQuery(t, h, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "message is required", resp["error"])
	}
}

func TestHandler_MalformedJSON(t *testing.T) {
	h := Handler{Svc: newTestService()}

	rec := postQuery(t, h, `{"message": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, newTestService())

	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
