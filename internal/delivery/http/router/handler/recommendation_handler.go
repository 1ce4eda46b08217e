package handler

import (
	"net/http"

	"cravlr/internal/delivery/http/response"
	"cravlr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RecommendationHandler holds dependencies for recommendation handlers.
type RecommendationHandler struct {
	uc usecase.RecommendationUsecase
}

// NewRecommendationHandler is the constructor for RecommendationHandler,
// injected by Fx.
func NewRecommendationHandler(uc usecase.RecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

// SubmitRecommendation records the recommender's answer to a request.
func (h *RecommendationHandler) SubmitRecommendation(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var input *usecase.SubmitRecommendationInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid recommendation input")
	}

	recommendation, err := h.uc.SubmitRecommendation(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, recommendation, "Recommendation submitted successfully")
}

// DeclineRequest records that the recommender is passing on a request.
func (h *RecommendationHandler) DeclineRequest(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	requestID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request ID")
	}

	if err := h.uc.DeclineRequest(c.Request().Context(), userID, requestID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Request declined")
}

// ListByRequest lists the raw recommendations on a request.
func (h *RecommendationHandler) ListByRequest(c echo.Context) error {
	requestID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request ID")
	}

	recommendations, err := h.uc.ListByRequest(c.Request().Context(), requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, recommendations, "Recommendations retrieved successfully")
}

// SaveRecommendation saves a recommendation and schedules its visit reminder.
func (h *RecommendationHandler) SaveRecommendation(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	recommendationID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid recommendation ID")
	}

	var input *usecase.SaveRecommendationInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid save input")
	}

	if err := h.uc.SaveRecommendation(c.Request().Context(), userID, recommendationID, input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Recommendation saved")
}
