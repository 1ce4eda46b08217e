package usecase

import (
	"context"
	"time"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// RecommendationUsecase defines the interface for submitting and saving
// recommendations.
type RecommendationUsecase interface {
	// SubmitRecommendation records a recommender's answer to a request. A
	// recommender gets one answer per request, and a request accepts a bounded
	// number of answers overall; both limits are enforced here, not in the
	// client.
	SubmitRecommendation(ctx context.Context, recommenderID uuid.UUID, input *SubmitRecommendationInput) (*entity.Recommendation, error)

	// DeclineRequest records that a recommender is passing on a request.
	DeclineRequest(ctx context.Context, recommenderID, requestID uuid.UUID) error

	// ListByRequest retrieves the raw recommendations on a request.
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*entity.Recommendation, error)

	// SaveRecommendation saves a recommendation for the requester and
	// schedules a visit reminder for it.
	SaveRecommendation(ctx context.Context, userID, recommendationID uuid.UUID, input *SaveRecommendationInput) error
}

// SubmitRecommendationInput defines the data required to submit a recommendation.
type SubmitRecommendationInput struct {
	RequestID      uuid.UUID `json:"request_id"`
	RestaurantName string    `json:"restaurant_name"`
	PlaceID        string    `json:"place_id,omitempty"`
	MapsURL        string    `json:"maps_url,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// SaveRecommendationInput controls the follow-up reminder scheduling.
type SaveRecommendationInput struct {
	RemindAt *time.Time `json:"remind_at,omitempty"` // Defaults to two days out when nil.
}
