package google

import (
	"context"
	"log/slog"
	"testing"

	"cravlr/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newTestService(validate tokenValidator) *AuthServiceImpl {
	return &AuthServiceImpl{
		clientID: "test-client-id",
		validate: validate,
		logger:   slog.New(slog.DiscardHandler),
	}
}

func verifiedPayload() *idtoken.Payload {
	return &idtoken.Payload{
		Issuer:  "https://accounts.google.com",
		Subject: "google-user-123",
		Claims: map[string]any{
			"email":          "foodie@example.com",
			"email_verified": true,
			"name":           "Foodie Example",
			"picture":        "https://example.com/avatar.png",
		},
	}
}

func TestVerifyIDToken(t *testing.T) {
	svc := newTestService(func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "raw-id-token", token)
		assert.Equal(t, "test-client-id", audience)

		return verifiedPayload(), nil
	})

	user, err := svc.VerifyIDToken(context.Background(), "raw-id-token")
	require.NoError(t, err)
	assert.Equal(t, "google-user-123", user.ID)
	assert.Equal(t, "foodie@example.com", user.Email)
	assert.Equal(t, "Foodie Example", user.Name)
	assert.Equal(t, entity.ProviderTypeGoogle, user.Provider)
	assert.True(t, user.EmailVerified)
}

func TestVerifyIDToken_InvalidToken(t *testing.T) {
	svc := newTestService(func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("signature mismatch")
	})

	_, err := svc.VerifyIDToken(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestVerifyIDToken_UnverifiedEmail(t *testing.T) {
	payload := verifiedPayload()
	payload.Claims["email_verified"] = false

	svc := newTestService(func(context.Context, string, string) (*idtoken.Payload, error) {
		return payload, nil
	})

	_, err := svc.VerifyIDToken(context.Background(), "raw-id-token")
	assert.ErrorContains(t, err, "email not verified")
}

func TestVerifyIDToken_MissingEmail(t *testing.T) {
	payload := verifiedPayload()
	delete(payload.Claims, "email")

	svc := newTestService(func(context.Context, string, string) (*idtoken.Payload, error) {
		return payload, nil
	})

	_, err := svc.VerifyIDToken(context.Background(), "raw-id-token")
	assert.ErrorContains(t, err, "no email")
}

func TestGetProvider(t *testing.T) {
	svc := newTestService(nil)
	assert.Equal(t, entity.ProviderTypeGoogle, svc.GetProvider())
}
