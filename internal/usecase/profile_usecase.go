package usecase

import (
	"context"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.Profile, error)
}

// UpdateProfileInput defines the data required to update a profile. Nil fields
// are left untouched.
type UpdateProfileInput struct {
	DisplayName          *string   `json:"display_name,omitempty"`
	PhoneNumber          *string   `json:"phone_number,omitempty"`
	City                 *string   `json:"city,omitempty"`
	State                *string   `json:"state,omitempty"`
	Latitude             *float64  `json:"latitude,omitempty"`
	Longitude            *float64  `json:"longitude,omitempty"`
	NotificationRadiusKm *float64  `json:"notification_radius_km,omitempty"`
	NotifyRecommender    *bool     `json:"notify_recommender,omitempty"`
	RecommenderPaused    *bool     `json:"recommender_paused,omitempty"`
	DoNotDisturb         *bool     `json:"do_not_disturb,omitempty"`
	PushNewRequest       *bool     `json:"push_new_request,omitempty"`
	EmailNewRequest      *bool     `json:"email_new_request,omitempty"`
	SMSNewRequest        *bool     `json:"sms_new_request,omitempty"`
	CuisineExpertise     *[]string `json:"cuisine_expertise,omitempty"`
}
