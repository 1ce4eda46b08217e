package repository

import (
	"context"
	"errors"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for business portal persistence.
var (
	// ErrBusinessNotFound is returned when a business profile is not found.
	ErrBusinessNotFound = errors.New("business profile not found")
	// ErrClaimNotFound is returned when a business claim is not found.
	ErrClaimNotFound = errors.New("business claim not found")
)

// BusinessRepository defines the interface for business portal persistence.
type BusinessRepository interface {
	// CreateClaim persists a new business ownership claim.
	CreateClaim(ctx context.Context, claim *entity.BusinessClaim) error

	// FindClaimByID retrieves a claim by its unique ID.
	FindClaimByID(ctx context.Context, id uuid.UUID) (*entity.BusinessClaim, error)

	// FindPendingClaimByClaimantAndPlace checks for an existing open claim to
	// keep claim submission idempotent.
	FindPendingClaimByClaimantAndPlace(ctx context.Context, claimantID uuid.UUID, placeID string) (*entity.BusinessClaim, error)

	// FindClaimsByStatus retrieves claims in a given state for admin review.
	FindClaimsByStatus(ctx context.Context, status entity.ClaimStatus, limit, offset int) ([]*entity.BusinessClaim, error)

	// UpdateClaim persists a claim review decision.
	UpdateClaim(ctx context.Context, claim *entity.BusinessClaim) error

	// CreateBusinessProfile persists a new business profile.
	CreateBusinessProfile(ctx context.Context, business *entity.BusinessProfile) error

	// FindBusinessByID retrieves a business profile by its unique ID.
	FindBusinessByID(ctx context.Context, id uuid.UUID) (*entity.BusinessProfile, error)

	// FindBusinessByOwner retrieves the business profile managed by a user.
	FindBusinessByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.BusinessProfile, error)

	// UpdateBusinessProfile persists changes to a business profile.
	UpdateBusinessProfile(ctx context.Context, business *entity.BusinessProfile) error
}
