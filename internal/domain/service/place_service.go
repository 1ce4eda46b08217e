package service

import "context"

// PlaceDetails holds the enrichment fields fetched for a restaurant.
type PlaceDetails struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Rating         float64  `json:"rating"`        // Average rating, 0 when unknown.
	UserRatings    int      `json:"user_ratings"`  // Number of reviews behind the rating.
	PriceLevel     int      `json:"price_level"`   // 0-4, 0 when unknown.
	Address        string   `json:"address"`
	MapsURL        string   `json:"maps_url"`
	PhotoReference string   `json:"photo_reference"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// PlaceDetailsService defines the interface for restaurant detail lookup.
//
// Implementations cache results with a short TTL and serve stale entries while
// a refresh is in flight, so aggregation never blocks on the upstream API for
// a place seen recently.
type PlaceDetailsService interface {
	// GetPlaceDetails fetches details for one place ID. A nil result with nil
	// error means the place is unknown upstream.
	GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}
