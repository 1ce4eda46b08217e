package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultNotificationRadiusKm applies when a profile has no radius configured.
const DefaultNotificationRadiusKm = 20.0

// Profile holds a user's public identity and notification preferences.
// Every account has exactly one profile; the notification fields drive
// whether and how the user is reached when food requests appear nearby.
type Profile struct {
	UserID               uuid.UUID `json:"user_id"`                // Foreign Key that links this profile to a core User entity.
	DisplayName          string    `json:"display_name"`           // Public name shown to requesters on recommendations.
	Email                string    `json:"email"`                  // Contact email, denormalized from the account for broadcast sends.
	PhoneNumber          string    `json:"phone_number"`           // E.164 phone number used for the SMS channel; empty disables SMS.
	City                 string    `json:"city"`                   // Home city used for fallback matching when coordinates are absent.
	State                string    `json:"state"`                  // Home state or region.
	Latitude             *float64  `json:"latitude"`               // Optional home latitude; nil means no coordinates on file.
	Longitude            *float64  `json:"longitude"`              // Optional home longitude.
	NotificationRadiusKm float64   `json:"notification_radius_km"` // Radius in kilometers for nearby request matching; 0 means default.
	NotifyRecommender    bool      `json:"notify_recommender"`     // Master toggle for new-request notifications.
	RecommenderPaused    bool      `json:"recommender_paused"`     // Temporarily opts the user out of recommending.
	DoNotDisturb         bool      `json:"do_not_disturb"`         // Suppresses live pings while set.
	PushNewRequest       bool      `json:"push_new_request"`       // Per-channel opt-in for push.
	EmailNewRequest      bool      `json:"email_new_request"`      // Per-channel opt-in for email.
	SMSNewRequest        bool      `json:"sms_new_request"`        // Per-channel opt-in for SMS.
	CuisineExpertise     []string  `json:"cuisine_expertise"`      // Cuisines the user claims to know well.
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// EffectiveRadiusKm returns the profile's notification radius, falling back
// to the system default when unset or invalid.
func (p *Profile) EffectiveRadiusKm() float64 {
	if p.NotificationRadiusKm <= 0 {
		return DefaultNotificationRadiusKm
	}

	return p.NotificationRadiusKm
}

// HasCoordinates reports whether both latitude and longitude are on file.
func (p *Profile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
