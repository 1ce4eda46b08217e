// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// UserUsecase defines the interface for account and session operations.
type UserUsecase interface {
	// Register creates a new foodlover account with its profile.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Login authenticates an email/password credential and opens a session.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// GoogleSignIn authenticates a Google ID token, creating the account on
	// first sign-in.
	GoogleSignIn(ctx context.Context, input *GoogleSignInInput) (*AuthOutput, error)

	// RefreshToken issues a new access token. The refresh token is unchanged.
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)

	// Logout invalidates the session behind a refresh token.
	Logout(ctx context.Context, input *LogoutInput) error

	// LogoutAllDevices invalidates every session belonging to a user.
	LogoutAllDevices(ctx context.Context, userID uuid.UUID) error
}

// --- Input/Output DTOs ---

// RegisterInput defines the data required to register an account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSignInInput carries the Google ID token from the client.
type GoogleSignInInput struct {
	IDToken string `json:"id_token"`
}

// AuthOutput is returned by every operation that opens a session.
type AuthOutput struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *entity.User `json:"user"`
}

// RefreshTokenInput carries the refresh token presented by the client.
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenOutput returns the newly issued access token.
type RefreshTokenOutput struct {
	AccessToken string `json:"access_token"`
}

// LogoutInput carries the refresh token of the session being closed.
type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
}
