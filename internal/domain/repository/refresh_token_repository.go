package repository

import (
	"context"
	"errors"
	"time"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines the interface for refresh token persistence.
type RefreshTokenRepository interface {
	// CreateRefreshToken persists a new session token.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves a token by its SHA-256 hash.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteRefreshToken removes a single session token.
	DeleteRefreshToken(ctx context.Context, id uuid.UUID) error

	// DeleteRefreshTokenByHash removes a session token by its hash, used on
	// logout where only the raw token is known.
	DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error

	// DeleteRefreshTokensByUser removes all of a user's session tokens.
	DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredRefreshTokens removes tokens that expired before the given time.
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}
