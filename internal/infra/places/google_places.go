// Package places implements restaurant detail enrichment on the Google
// Places API, fronted by a short-TTL cache.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"cravlr/config"
	"cravlr/internal/domain/service"
	"cravlr/internal/infra/cache"

	"github.com/pkg/errors"
)

const (
	defaultAPIBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultCacheTTL   = 15 * time.Minute
	requestTimeout    = 5 * time.Second
)

// placeService implements service.PlaceDetailsService against the Places
// Details endpoint. Lookups go through a TTL cache with stale-while-revalidate
// so the aggregator never blocks on the upstream for a recently seen place.
type placeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.TTLCache[string, *service.PlaceDetails]
	logger     *slog.Logger
}

// NewPlaceService is the constructor for placeService.
func NewPlaceService(cfg *config.Config, logger *slog.Logger) service.PlaceDetailsService {
	apiKey := ""
	baseURL := defaultAPIBaseURL
	ttl := defaultCacheTTL
	if cfg != nil && cfg.Places != nil {
		apiKey = cfg.Places.APIKey
		if cfg.Places.APIBaseURL != "" {
			baseURL = cfg.Places.APIBaseURL
		}
		if cfg.Places.CacheTTL > 0 {
			ttl = cfg.Places.CacheTTL
		}
	}

	svc := &placeService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
	svc.cache = cache.New(ttl, svc.fetchPlaceDetails)

	return svc
}

// GetPlaceDetails fetches details for one place ID, serving cached entries
// when fresh. A nil result with nil error means the place is unknown upstream.
func (s *placeService) GetPlaceDetails(ctx context.Context, placeID string) (*service.PlaceDetails, error) {
	if placeID == "" {
		return nil, errors.New("place ID is required")
	}

	return s.cache.Get(ctx, placeID)
}

// detailsResponse mirrors the Places Details API payload, limited to the
// fields the aggregator needs.
type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		PlaceID          string  `json:"place_id"`
		Name             string  `json:"name"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		PriceLevel       int     `json:"price_level"`
		FormattedAddress string  `json:"formatted_address"`
		URL              string  `json:"url"`
		Photos           []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

func (s *placeService) fetchPlaceDetails(ctx context.Context, placeID string) (*service.PlaceDetails, error) {
	endpoint := fmt.Sprintf("%s/details/json?%s", s.baseURL, url.Values{
		"place_id": {placeID},
		"fields":   {"place_id,name,rating,user_ratings_total,price_level,formatted_address,url,photos,geometry"},
		"key":      {s.apiKey},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build place details request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "place details request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("place details returned status %d", resp.StatusCode)
	}

	var payload detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode place details response")
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND", "INVALID_REQUEST":
		s.logger.Debug("place unknown upstream",
			slog.String("place_id", placeID),
			slog.String("status", payload.Status),
		)

		return nil, nil
	default:
		return nil, errors.Errorf("place details returned status %q", payload.Status)
	}

	details := &service.PlaceDetails{
		PlaceID:     payload.Result.PlaceID,
		Name:        payload.Result.Name,
		Rating:      payload.Result.Rating,
		UserRatings: payload.Result.UserRatingsTotal,
		PriceLevel:  payload.Result.PriceLevel,
		Address:     payload.Result.FormattedAddress,
		MapsURL:     payload.Result.URL,
	}
	if len(payload.Result.Photos) > 0 {
		details.PhotoReference = payload.Result.Photos[0].PhotoReference
	}
	if payload.Result.Geometry.Location.Lat != 0 || payload.Result.Geometry.Location.Lng != 0 {
		lat := payload.Result.Geometry.Location.Lat
		lng := payload.Result.Geometry.Location.Lng
		details.Latitude = &lat
		details.Longitude = &lng
	}

	return details, nil
}
