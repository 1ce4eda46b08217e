package handler

import (
	"net/http"

	"cravlr/internal/delivery/http/response"
	"cravlr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// InboxHandler holds dependencies for the notification inbox handlers.
type InboxHandler struct {
	uc usecase.InboxUsecase
}

// NewInboxHandler is the constructor for InboxHandler, injected by Fx.
func NewInboxHandler(uc usecase.InboxUsecase) *InboxHandler {
	return &InboxHandler{uc: uc}
}

// GetInbox pages through the user's notifications, newest first.
func (h *InboxHandler) GetInbox(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	limit, offset := pageParams(c)

	notifications, err := h.uc.GetInbox(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, notifications, "Inbox retrieved successfully")
}

// CountUnread returns the user's unread notification count.
func (h *InboxHandler) CountUnread(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	count, err := h.uc.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"unread": count}, "Unread count retrieved")
}

// MarkRead stamps one of the user's notifications as read.
func (h *InboxHandler) MarkRead(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	notificationID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid notification ID")
	}

	if err := h.uc.MarkRead(c.Request().Context(), userID, notificationID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification marked as read")
}

// ProcessMyReminders converts the caller's due visit reminders into inbox
// notifications immediately instead of waiting for the next sweep.
func (h *InboxHandler) ProcessMyReminders(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	limit, _ := pageParams(c)

	processed, err := h.uc.ProcessUserReminders(c.Request().Context(), userID, limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"processed": processed}, "Reminders processed")
}

// GetRecommenderInbox pages through the recommender's nearby-request entries.
func (h *InboxHandler) GetRecommenderInbox(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	limit, offset := pageParams(c)

	notifications, err := h.uc.GetRecommenderInbox(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, notifications, "Recommender inbox retrieved successfully")
}

// MarkRecommenderRead stamps a recommender notification as read.
func (h *InboxHandler) MarkRecommenderRead(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	notificationID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid notification ID")
	}

	if err := h.uc.MarkRecommenderRead(c.Request().Context(), userID, notificationID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification marked as read")
}
