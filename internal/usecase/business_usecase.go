package usecase

import (
	"context"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// BusinessUsecase defines the interface for the restaurant business portal.
type BusinessUsecase interface {
	// SubmitClaim opens an ownership claim on a restaurant. Resubmitting while
	// a claim is pending returns the pending claim.
	SubmitClaim(ctx context.Context, claimantID uuid.UUID, input *SubmitClaimInput) (*entity.BusinessClaim, error)

	// GetMyBusiness retrieves the business profile the caller manages.
	GetMyBusiness(ctx context.Context, ownerID uuid.UUID) (*entity.BusinessProfile, error)

	// ListClaims pages through claims in a given state for admin review.
	ListClaims(ctx context.Context, status entity.ClaimStatus, limit, offset int) ([]*entity.BusinessClaim, error)

	// ReviewClaim resolves a pending claim. Approval creates the business
	// profile and grants the claimant the business role.
	ReviewClaim(ctx context.Context, reviewerID, claimID uuid.UUID, input *ReviewClaimInput) (*entity.BusinessClaim, error)
}

// SubmitClaimInput defines the data required to claim a restaurant.
type SubmitClaimInput struct {
	PlaceID      string `json:"place_id"`
	BusinessName string `json:"business_name"`
	City         string `json:"city"`
	State        string `json:"state"`
	Evidence     string `json:"evidence"`
}

// ReviewClaimInput carries the admin's decision on a claim.
type ReviewClaimInput struct {
	Approve        bool    `json:"approve"`
	CommissionRate float64 `json:"commission_rate"` // Applied to the business profile on approval.
}
