package entity

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the lifecycle state of a food request.
type RequestStatus string

const (
	// RequestStatusActive means the request is still collecting recommendations.
	RequestStatusActive RequestStatus = "active"
	// RequestStatusClosed means the requester closed the request manually.
	RequestStatusClosed RequestStatus = "closed"
	// RequestStatusExpired means the response window elapsed before closing.
	RequestStatusExpired RequestStatus = "expired"
)

// RequestUrgency buckets the response window for display and ping scheduling.
type RequestUrgency string

const (
	// RequestUrgencyQuick covers response windows of 15 minutes or less.
	RequestUrgencyQuick RequestUrgency = "quick"
	// RequestUrgencySoon covers windows up to an hour.
	RequestUrgencySoon RequestUrgency = "soon"
	// RequestUrgencyExtended covers anything longer.
	RequestUrgencyExtended RequestUrgency = "extended"
)

// FoodRequest represents a requester asking locals for food recommendations.
type FoodRequest struct {
	ID                    uuid.UUID     `json:"id"`                      // The Global Unique Identifier (GUID) for the request.
	RequesterID           uuid.UUID     `json:"requester_id"`            // The ID of the user asking for recommendations.
	FoodType              string        `json:"food_type"`               // What the requester is craving, e.g. "tacos".
	City                  string        `json:"city"`                    // City the requester wants recommendations for.
	State                 string        `json:"state"`                   // State or region of the target city.
	Latitude              *float64      `json:"latitude"`                // Optional request latitude; nil falls back to city matching.
	Longitude             *float64      `json:"longitude"`               // Optional request longitude.
	ResponseWindowMinutes int           `json:"response_window_minutes"` // How long recommenders have to respond.
	Status                RequestStatus `json:"status"`                  // Lifecycle state: active, closed, or expired.
	ExpiresAt             time.Time     `json:"expires_at"`              // When the response window ends.
	ClosedAt              *time.Time    `json:"closed_at"`               // When the requester closed it, if they did.
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// HasCoordinates reports whether the request carries a location fix.
func (r *FoodRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Urgency buckets the response window.
func (r *FoodRequest) Urgency() RequestUrgency {
	switch {
	case r.ResponseWindowMinutes <= 15:
		return RequestUrgencyQuick
	case r.ResponseWindowMinutes <= 60:
		return RequestUrgencySoon
	default:
		return RequestUrgencyExtended
	}
}

// IsOpen reports whether the request still accepts recommendations at the given time.
func (r *FoodRequest) IsOpen(now time.Time) bool {
	return r.Status == RequestStatusActive && now.Before(r.ExpiresAt)
}
