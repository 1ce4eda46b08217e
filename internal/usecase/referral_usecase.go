package usecase

import (
	"context"
	"time"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ReferralUsecase defines the interface for referral links, click tracking,
// and commission reporting.
type ReferralUsecase interface {
	// CreateReferralLink creates the shareable link for a recommendation,
	// returning the existing one when it was already created.
	CreateReferralLink(ctx context.Context, recommenderID, recommendationID uuid.UUID) (*ReferralLinkOutput, error)

	// GetReferralQR renders the link's public URL as a PNG QR code.
	GetReferralQR(ctx context.Context, recommenderID, recommendationID uuid.UUID) ([]byte, error)

	// TrackClick records a click on a public link code and returns the
	// destination URL to redirect to. Repeat clicks from the same IP within
	// 24 hours are stored but not counted toward commission. An expired link
	// returns ErrReferralLinkExpired together with the destination so callers
	// can still forward the visitor without recording anything.
	TrackClick(ctx context.Context, input *TrackClickInput) (string, error)

	// MarkConversion lets a business confirm a click turned into a visit.
	MarkConversion(ctx context.Context, ownerID uuid.UUID, input *MarkConversionInput) (*entity.ReferralConversion, error)

	// ListConversions pages through a business's confirmed visits.
	ListConversions(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.ReferralConversion, error)

	// GetCommissionSummary aggregates a business's referral performance.
	GetCommissionSummary(ctx context.Context, ownerID uuid.UUID) (*entity.CommissionSummary, error)
}

// ReferralLinkOutput is the shareable link plus its public URL.
type ReferralLinkOutput struct {
	Link      *entity.ReferralLink `json:"link"`
	PublicURL string               `json:"public_url"`
}

// TrackClickInput carries the click context captured at the redirect endpoint.
type TrackClickInput struct {
	Code        string     `json:"code"`
	IPAddress   string     `json:"ip_address"`
	UserAgent   string     `json:"user_agent"`
	RequesterID *uuid.UUID `json:"requester_id,omitempty"` // Set when the click came from a logged-in user.
	ClickedAt   time.Time  `json:"clicked_at"`
}

// MarkConversionInput identifies the click being confirmed and the visit value.
type MarkConversionInput struct {
	ClickID    uuid.UUID `json:"click_id"`
	VisitValue float64   `json:"visit_value"` // Dollar value of the visit; commission is rate x value.
}
