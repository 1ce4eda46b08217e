package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReferralLink is a shareable, trackable link generated for a recommendation.
// Clicks on the link attribute restaurant visits back to the recommender for
// commission purposes.
type ReferralLink struct {
	ID               uuid.UUID `json:"id"`                // The Global Unique Identifier (GUID) for the link.
	RecommendationID uuid.UUID `json:"recommendation_id"` // The recommendation this link promotes.
	RecommenderID    uuid.UUID `json:"recommender_id"`    // The user who earns commission on conversions.
	Code             string    `json:"code"`              // Short URL-safe code embedded in the public link path.
	DestinationURL   string    `json:"destination_url"`   // Where a click redirects to, typically a maps URL.
	ExpiresAt        time.Time `json:"expires_at"`        // When the link stops tracking clicks.
	CreatedAt        time.Time `json:"created_at"`
}

// IsExpired reports whether the link has lapsed at the given time.
func (l *ReferralLink) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// ReferralClick records one click on a referral link. Clicks from the same IP
// within 24 hours of an earlier click on the same link are stored but not
// counted toward commission.
type ReferralClick struct {
	ID            uuid.UUID  `json:"id"`
	LinkID        uuid.UUID  `json:"link_id"`        // The referral link that was clicked.
	RecommenderID uuid.UUID  `json:"recommender_id"` // Denormalized from the link for commission queries.
	RequesterID   *uuid.UUID `json:"requester_id"`   // The requester who clicked, when known.
	IPAddress     string     `json:"ip_address"`     // Client IP used for dedup and rate limiting.
	UserAgent     string     `json:"user_agent"`
	Counted       bool       `json:"counted"`    // False when deduplicated within the 24h window.
	ClickedAt     time.Time  `json:"clicked_at"`
}

// ReferralConversion records a business marking a referral click as a real
// visit, together with the commission owed for it.
type ReferralConversion struct {
	ID               uuid.UUID `json:"id"`
	ClickID          uuid.UUID `json:"click_id"`          // The counted click that converted.
	BusinessID       uuid.UUID `json:"business_id"`       // The business profile confirming the visit.
	CommissionAmount float64   `json:"commission_amount"` // Commission owed to the recommender, in dollars.
	ConvertedAt      time.Time `json:"converted_at"`
}

// CommissionSummary aggregates referral performance for a business.
type CommissionSummary struct {
	BusinessID       uuid.UUID `json:"business_id"`
	TotalClicks      int64     `json:"total_clicks"`
	TotalConversions int64     `json:"total_conversions"`
	TotalCommission  float64   `json:"total_commission"`
}
