package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReferralUsecase struct {
	trackClick func(input *usecase.TrackClickInput) (string, error)
}

func (s *stubReferralUsecase) CreateReferralLink(_ context.Context, _, _ uuid.UUID) (*usecase.ReferralLinkOutput, error) {
	return nil, nil
}

func (s *stubReferralUsecase) GetReferralQR(_ context.Context, _, _ uuid.UUID) ([]byte, error) {
	return nil, nil
}

func (s *stubReferralUsecase) TrackClick(_ context.Context, input *usecase.TrackClickInput) (string, error) {
	return s.trackClick(input)
}

func (s *stubReferralUsecase) MarkConversion(_ context.Context, _ uuid.UUID, _ *usecase.MarkConversionInput) (*entity.ReferralConversion, error) {
	return nil, nil
}

func (s *stubReferralUsecase) ListConversions(_ context.Context, _ uuid.UUID, _, _ int) ([]*entity.ReferralConversion, error) {
	return nil, nil
}

func (s *stubReferralUsecase) GetCommissionSummary(_ context.Context, _ uuid.UUID) (*entity.CommissionSummary, error) {
	return nil, nil
}

func trackClickRequest(t *testing.T, uc usecase.ReferralUsecase, code string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/r/"+code, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/r/:code")
	c.SetParamNames("code")
	c.SetParamValues(code)

	return rec, NewReferralHandler(uc).TrackClick(c)
}

func TestTrackClick_RedirectsToDestination(t *testing.T) {
	uc := &stubReferralUsecase{trackClick: func(input *usecase.TrackClickInput) (string, error) {
		assert.Equal(t, "abc123", input.Code)

		return "https://maps.example.com/franklin", nil
	}}

	rec, err := trackClickRequest(t, uc, "abc123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://maps.example.com/franklin", rec.Header().Get(echo.HeaderLocation))
}

func TestTrackClick_ExpiredLinkStillRedirectsWhenDestinationKnown(t *testing.T) {
	uc := &stubReferralUsecase{trackClick: func(*usecase.TrackClickInput) (string, error) {
		return "https://maps.example.com/franklin", domainerrors.ErrReferralLinkExpired
	}}

	rec, err := trackClickRequest(t, uc, "stale")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://maps.example.com/franklin", rec.Header().Get(echo.HeaderLocation))
}

func TestTrackClick_ExpiredLinkWithoutDestinationIsGone(t *testing.T) {
	uc := &stubReferralUsecase{trackClick: func(*usecase.TrackClickInput) (string, error) {
		return "", domainerrors.ErrReferralLinkExpired
	}}

	_, err := trackClickRequest(t, uc, "stale")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrReferralLinkExpired)
}
