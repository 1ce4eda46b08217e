package repository

import (
	"context"
	"errors"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when a profile is not found.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the interface for profile-related database operations.
type ProfileRepository interface {
	// CreateProfile persists a new profile for a user.
	CreateProfile(ctx context.Context, profile *entity.Profile) error

	// FindProfileByUserID retrieves the profile belonging to a user.
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)

	// FindProfilesByUserIDs retrieves profiles for a set of users.
	FindProfilesByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*entity.Profile, error)

	// FindNotifiableProfiles retrieves all profiles that have not opted out of
	// recommender notifications. This is the candidate set for area matching;
	// fine-grained filtering happens in the matcher.
	FindNotifiableProfiles(ctx context.Context) ([]*entity.Profile, error)

	// UpdateProfile persists changes to an existing profile.
	UpdateProfile(ctx context.Context, profile *entity.Profile) error
}
