// Package google verifies Google ID tokens for the sign-in flow.
package google

import (
	"context"
	"log/slog"

	"cravlr/config"
	"cravlr/internal/domain/entity"
	"cravlr/internal/domain/service"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
)

// tokenValidator matches idtoken.Validate so tests can substitute it.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// AuthServiceImpl implements service.OAuthAuthService for Google sign-in.
type AuthServiceImpl struct {
	clientID string
	validate tokenValidator
	logger   *slog.Logger
}

// NewAuthService creates a new Google auth service.
func NewAuthService(cfg *config.Config, logger *slog.Logger) service.OAuthAuthService {
	clientID := ""
	if cfg.GoogleOAuth != nil {
		clientID = cfg.GoogleOAuth.ClientID
	}

	return &AuthServiceImpl{
		clientID: clientID,
		validate: idtoken.Validate,
		logger:   logger,
	}
}

// VerifyIDToken validates a Google ID token against the configured client ID
// and maps its claims to an OAuth user.
func (s *AuthServiceImpl) VerifyIDToken(ctx context.Context, token string) (*service.OAuthUser, error) {
	payload, err := s.validate(ctx, token, s.clientID)
	if err != nil {
		s.logger.Warn("Google ID token rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	user, err := mapPayload(payload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Google ID token verified",
		slog.String("userID", user.ID),
		slog.String("email", user.Email))

	return user, nil
}

// GetProvider returns the OAuth provider type.
func (s *AuthServiceImpl) GetProvider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// mapPayload converts verified token claims to an OAuth user. Unverified
// email addresses are rejected so an attacker cannot squat on an account by
// registering its address with Google.
func mapPayload(payload *idtoken.Payload) (*service.OAuthUser, error) {
	email := claimString(payload.Claims, "email")
	if email == "" {
		return nil, errors.New("ID token carries no email")
	}

	verified, _ := payload.Claims["email_verified"].(bool)
	if !verified {
		return nil, errors.New("email not verified")
	}

	return &service.OAuthUser{
		ID:            payload.Subject,
		Email:         email,
		Name:          claimString(payload.Claims, "name"),
		Provider:      entity.ProviderTypeGoogle,
		AvatarURL:     claimString(payload.Claims, "picture"),
		EmailVerified: verified,
	}, nil
}

func claimString(claims map[string]any, key string) string {
	value, _ := claims[key].(string)

	return value
}
