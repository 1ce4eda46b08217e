package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClaimStatus represents the review state of a business claim.
type ClaimStatus string

const (
	// ClaimStatusPending means the claim awaits admin review.
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusApproved means the claim was verified.
	ClaimStatusApproved ClaimStatus = "approved"
	// ClaimStatusRejected means the claim was denied.
	ClaimStatusRejected ClaimStatus = "rejected"
)

// BusinessProfile represents a restaurant's presence on the commission portal.
// It is created when a claim on the restaurant's place ID is approved.
type BusinessProfile struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`        // The account that manages this business.
	PlaceID        string    `json:"place_id"`        // Google place ID identifying the restaurant.
	Name           string    `json:"name"`            // Restaurant display name.
	City           string    `json:"city"`
	State          string    `json:"state"`
	CommissionRate float64   `json:"commission_rate"` // Fraction of a visit's value owed per conversion, e.g. 0.05.
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BusinessClaim is a request by an account to take ownership of a restaurant.
type BusinessClaim struct {
	ID           uuid.UUID   `json:"id"`
	ClaimantID   uuid.UUID   `json:"claimant_id"` // The account asserting ownership.
	PlaceID      string      `json:"place_id"`    // The restaurant being claimed.
	BusinessName string      `json:"business_name"`
	Evidence     string      `json:"evidence"`    // Free-text supporting information for the reviewer.
	Status       ClaimStatus `json:"status"`
	ReviewedBy   *uuid.UUID  `json:"reviewed_by"` // The admin who resolved the claim.
	ReviewedAt   *time.Time  `json:"reviewed_at"`
	CreatedAt    time.Time   `json:"created_at"`
}
