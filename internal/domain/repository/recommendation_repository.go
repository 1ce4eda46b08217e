package repository

import (
	"context"
	"errors"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for recommendation persistence.
var (
	// ErrRecommendationNotFound is returned when a recommendation is not found.
	ErrRecommendationNotFound = errors.New("recommendation not found")
	// ErrRecommendationExists is returned when the recommender already answered this request.
	ErrRecommendationExists = errors.New("recommendation already exists for this recommender and request")
)

// RecommendationRepository defines the interface for recommendation persistence.
type RecommendationRepository interface {
	// CreateRecommendation persists a new recommendation. Returns
	// ErrRecommendationExists when the (request, recommender) pair already has one.
	CreateRecommendation(ctx context.Context, rec *entity.Recommendation) error

	// FindRecommendationByID retrieves a recommendation by its unique ID.
	FindRecommendationByID(ctx context.Context, id uuid.UUID) (*entity.Recommendation, error)

	// FindRecommendationsByRequest retrieves all recommendations for a request,
	// newest first.
	FindRecommendationsByRequest(ctx context.Context, requestID uuid.UUID) ([]*entity.Recommendation, error)

	// CountRecommendationsByRequest counts the recommendations on a request.
	CountRecommendationsByRequest(ctx context.Context, requestID uuid.UUID) (int64, error)

	// CreateDecline records a recommender passing on a request. Duplicate
	// declines are ignored.
	CreateDecline(ctx context.Context, decline *entity.RequestDecline) error

	// HasDeclined reports whether the recommender already passed on the request.
	HasDeclined(ctx context.Context, requestID, recommenderID uuid.UUID) (bool, error)
}
