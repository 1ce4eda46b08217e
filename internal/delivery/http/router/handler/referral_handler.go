package handler

import (
	"net/http"
	"time"

	"cravlr/internal/delivery/http/response"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReferralHandler holds dependencies for referral link and commission handlers.
type ReferralHandler struct {
	uc usecase.ReferralUsecase
}

// NewReferralHandler is the constructor for ReferralHandler, injected by Fx.
func NewReferralHandler(uc usecase.ReferralUsecase) *ReferralHandler {
	return &ReferralHandler{uc: uc}
}

// CreateReferralLink creates (or returns) the shareable link for one of the
// recommender's recommendations.
func (h *ReferralHandler) CreateReferralLink(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	recommendationID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid recommendation ID")
	}

	output, err := h.uc.CreateReferralLink(c.Request().Context(), userID, recommendationID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Referral link created")
}

// GetReferralQR renders the referral link as a PNG QR code.
func (h *ReferralHandler) GetReferralQR(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	recommendationID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid recommendation ID")
	}

	png, err := h.uc.GetReferralQR(c.Request().Context(), userID, recommendationID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// TrackClick is the public redirect endpoint behind shared referral links.
// It records the click and sends the visitor on to the restaurant's page.
func (h *ReferralHandler) TrackClick(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_INPUT", "Missing referral code")
	}

	input := &usecase.TrackClickInput{
		Code:      code,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		ClickedAt: time.Now(),
	}
	// The redirect is public, but a logged-in requester may still carry a
	// token; attribute the click to them when present.
	if userID, ok := currentUserID(c); ok {
		input.RequesterID = &userID
	}

	destination, err := h.uc.TrackClick(c.Request().Context(), input)
	if err != nil {
		// An expired link still forwards the visitor when it has a
		// destination; 410 is reserved for links with nowhere to go.
		if errors.Is(err, domainerrors.ErrReferralLinkExpired) && destination != "" {
			return c.Redirect(http.StatusFound, destination)
		}

		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusFound, destination)
}

// MarkConversion lets the business owner confirm a click turned into a visit.
func (h *ReferralHandler) MarkConversion(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var input *usecase.MarkConversionInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid conversion input")
	}

	conversion, err := h.uc.MarkConversion(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, conversion, "Conversion recorded")
}

// ListConversions pages through the business's confirmed visits.
func (h *ReferralHandler) ListConversions(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	limit, offset := pageParams(c)

	conversions, err := h.uc.ListConversions(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, conversions, "Conversions retrieved successfully")
}

// GetCommissionSummary aggregates the business's referral performance.
func (h *ReferralHandler) GetCommissionSummary(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	summary, err := h.uc.GetCommissionSummary(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "Commission summary retrieved")
}
