package places

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cravlr/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*placeService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Places = &config.PlacesConfig{
		APIKey:     "test-key",
		APIBaseURL: server.URL,
		CacheTTL:   15 * time.Minute,
	}

	svc := NewPlaceService(cfg, slog.New(slog.DiscardHandler)).(*placeService)

	return svc, server
}

func TestGetPlaceDetails_ParsesUpstreamPayload(t *testing.T) {
	var calls atomic.Int64
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "place-1",
				"name": "Franklin Barbecue",
				"rating": 4.8,
				"user_ratings_total": 32000,
				"price_level": 2,
				"formatted_address": "900 E 11th St, Austin, TX",
				"url": "https://maps.google.com/?cid=123",
				"photos": [{"photo_reference": "ref-1"}],
				"geometry": {"location": {"lat": 30.2701, "lng": -97.7312}}
			}
		}`))
	})

	details, err := svc.GetPlaceDetails(context.Background(), "place-1")
	require.NoError(t, err)
	require.NotNil(t, details)

	assert.Equal(t, "Franklin Barbecue", details.Name)
	assert.InDelta(t, 4.8, details.Rating, 0.001)
	assert.Equal(t, 32000, details.UserRatings)
	assert.Equal(t, 2, details.PriceLevel)
	assert.Equal(t, "ref-1", details.PhotoReference)
	require.NotNil(t, details.Latitude)
	assert.InDelta(t, 30.2701, *details.Latitude, 0.0001)
}

func TestGetPlaceDetails_CachesRepeatLookups(t *testing.T) {
	var calls atomic.Int64
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status": "OK", "result": {"place_id": "place-1", "name": "Franklin Barbecue"}}`))
	})

	_, err := svc.GetPlaceDetails(context.Background(), "place-1")
	require.NoError(t, err)
	_, err = svc.GetPlaceDetails(context.Background(), "place-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load(), "second lookup should hit the cache")
}

func TestGetPlaceDetails_UnknownPlaceIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND"}`))
	})

	details, err := svc.GetPlaceDetails(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, details)
}

func TestGetPlaceDetails_UpstreamErrorStatus(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT"}`))
	})

	_, err := svc.GetPlaceDetails(context.Background(), "place-1")
	assert.Error(t, err)
}

func TestGetPlaceDetails_EmptyPlaceID(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, err := svc.GetPlaceDetails(context.Background(), "")
	assert.Error(t, err)
}
