package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaxRecommendationNoteLength bounds the free-text note shown in results.
const MaxRecommendationNoteLength = 140

// Recommendation represents a single restaurant suggestion submitted by a
// recommender in response to a food request. A recommender may submit at most
// one recommendation per request.
type Recommendation struct {
	ID             uuid.UUID `json:"id"`              // The Global Unique Identifier (GUID) for the recommendation.
	RequestID      uuid.UUID `json:"request_id"`      // The food request this recommendation answers.
	RecommenderID  uuid.UUID `json:"recommender_id"`  // The user who submitted it.
	RestaurantName string    `json:"restaurant_name"` // Name of the recommended restaurant.
	PlaceID        string    `json:"place_id"`        // Optional Google place ID; empty when the recommender typed a name only.
	MapsURL        string    `json:"maps_url"`        // Optional link to the restaurant on a maps provider.
	Notes          string    `json:"notes"`           // Optional free-text note, truncated for display.
	CreatedAt      time.Time `json:"created_at"`
}

// RequestDecline records a recommender passing on a request so it stops
// appearing in their ping queue.
type RequestDecline struct {
	ID            uuid.UUID `json:"id"`
	RequestID     uuid.UUID `json:"request_id"`
	RecommenderID uuid.UUID `json:"recommender_id"`
	CreatedAt     time.Time `json:"created_at"`
}
