package repository

import (
	"context"
	"errors"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAuthenticationNotFound is returned when no matching credential exists.
var ErrAuthenticationNotFound = errors.New("authentication not found")

// AuthRepository defines the interface for credential persistence.
type AuthRepository interface {
	// CreateAuthentication links a new credential to a user.
	CreateAuthentication(ctx context.Context, auth *entity.Authentication) error

	// FindAuthenticationByUserAndProvider retrieves a user's credential for one provider.
	FindAuthenticationByUserAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.Authentication, error)

	// FindAuthenticationByProviderUserID resolves an external provider identity to a credential.
	FindAuthenticationByProviderUserID(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error)
}
