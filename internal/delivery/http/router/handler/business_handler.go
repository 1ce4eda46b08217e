package handler

import (
	"net/http"

	"cravlr/internal/delivery/http/response"
	"cravlr/internal/domain/entity"
	"cravlr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// BusinessHandler holds dependencies for the business portal handlers.
type BusinessHandler struct {
	uc usecase.BusinessUsecase
}

// NewBusinessHandler is the constructor for BusinessHandler, injected by Fx.
func NewBusinessHandler(uc usecase.BusinessUsecase) *BusinessHandler {
	return &BusinessHandler{uc: uc}
}

// SubmitClaim opens an ownership claim on a restaurant.
func (h *BusinessHandler) SubmitClaim(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var input *usecase.SubmitClaimInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid claim input")
	}

	claim, err := h.uc.SubmitClaim(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, claim, "Claim submitted successfully")
}

// GetMyBusiness returns the business profile the caller manages.
func (h *BusinessHandler) GetMyBusiness(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	business, err := h.uc.GetMyBusiness(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, business, "Business retrieved successfully")
}

// ListClaims pages through claims awaiting (or past) review. Admin only.
func (h *BusinessHandler) ListClaims(c echo.Context) error {
	status := entity.ClaimStatus(c.QueryParam("status"))
	if status == "" {
		status = entity.ClaimStatusPending
	}

	limit, offset := pageParams(c)

	claims, err := h.uc.ListClaims(c.Request().Context(), status, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, claims, "Claims retrieved successfully")
}

// ReviewClaim resolves a pending claim. Admin only.
func (h *BusinessHandler) ReviewClaim(c echo.Context) error {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	claimID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid claim ID")
	}

	var input *usecase.ReviewClaimInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid review input")
	}

	claim, err := h.uc.ReviewClaim(c.Request().Context(), reviewerID, claimID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, claim, "Claim reviewed")
}
