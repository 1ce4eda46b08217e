package handler

import (
	"net/http"

	"cravlr/internal/delivery/http/response"
	"cravlr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RequestHandler holds dependencies for food request handlers.
type RequestHandler struct {
	uc       usecase.RequestUsecase
	resultUC usecase.ResultUsecase
}

// NewRequestHandler is the constructor for RequestHandler, injected by Fx.
func NewRequestHandler(uc usecase.RequestUsecase, resultUC usecase.ResultUsecase) *RequestHandler {
	return &RequestHandler{
		uc:       uc,
		resultUC: resultUC,
	}
}

// CreateRequest opens a new food request and broadcasts it to nearby
// recommenders.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var input *usecase.CreateRequestInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request input")
	}

	request, err := h.uc.CreateRequest(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, request, "Request created successfully")
}

// GetRequest retrieves a single request by ID.
func (h *RequestHandler) GetRequest(c echo.Context) error {
	requestID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request ID")
	}

	request, err := h.uc.GetRequest(c.Request().Context(), requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, request, "Request retrieved successfully")
}

// ListActiveRequests pages through open requests, newest first.
func (h *RequestHandler) ListActiveRequests(c echo.Context) error {
	limit, offset := pageParams(c)

	output, err := h.uc.ListActiveRequests(c.Request().Context(), limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Requests retrieved successfully")
}

// ListMyRequests pages through the authenticated requester's own requests.
func (h *RequestHandler) ListMyRequests(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	limit, offset := pageParams(c)

	output, err := h.uc.ListMyRequests(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Requests retrieved successfully")
}

// CloseRequest closes one of the requester's open requests.
func (h *RequestHandler) CloseRequest(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	requestID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request ID")
	}

	if err := h.uc.CloseRequest(c.Request().Context(), userID, requestID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Request closed")
}

// GetRequestResults returns the aggregated, scored restaurant view of a
// request's recommendations.
func (h *RequestHandler) GetRequestResults(c echo.Context) error {
	requestID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request ID")
	}

	limit, offset := pageParams(c)

	output, err := h.resultUC.GetRequestResults(c.Request().Context(), requestID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Results retrieved successfully")
}
