package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResultUsecase defines the interface for the aggregated results view of a
// food request: recommendations grouped per restaurant, enriched with place
// details, scored, and paged.
type ResultUsecase interface {
	GetRequestResults(ctx context.Context, requestID uuid.UUID, limit, offset int) (*RequestResultsOutput, error)
}

// RestaurantResult is one restaurant in the aggregated view, merging every
// recommendation that named it.
type RestaurantResult struct {
	PlaceID            string    `json:"place_id,omitempty"` // Empty for name-only recommendations.
	Name               string    `json:"name"`
	Count              int       `json:"count"` // How many recommenders named this restaurant.
	Score              float64   `json:"score"`
	FirstRecommendedAt time.Time `json:"first_recommended_at"`
	LastRecommendedAt  time.Time `json:"last_recommended_at"`
	RecentNotes        []string  `json:"recent_notes"`      // Up to three newest notes, truncated for display.
	RecommenderNames   []string  `json:"recommender_names"` // Unique display names, in first-seen order.
	MapsURL            string    `json:"maps_url,omitempty"`
	Rating             float64   `json:"rating,omitempty"`
	UserRatings        int       `json:"user_ratings,omitempty"`
	PriceLevel         int       `json:"price_level,omitempty"`
	DistanceKm         *float64  `json:"distance_km,omitempty"` // From the request location, when both sides have coordinates.
}

// RequestResultsOutput is one page of the aggregated view.
type RequestResultsOutput struct {
	RequestID uuid.UUID           `json:"request_id"`
	Total     int                 `json:"total"` // Total restaurant groups before paging.
	HasMore   bool                `json:"has_more"`
	Results   []*RestaurantResult `json:"results"`
}
