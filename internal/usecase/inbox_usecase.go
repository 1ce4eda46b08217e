package usecase

import (
	"context"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// InboxUsecase defines the interface for the in-app notification inboxes and
// the visit reminder sweep.
type InboxUsecase interface {
	// GetInbox pages through a requester's notifications, newest first.
	GetInbox(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error)

	// CountUnread counts a user's unread notifications.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkRead stamps a notification as read by its owner.
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error

	// GetRecommenderInbox pages through a recommender's nearby-request entries.
	GetRecommenderInbox(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.RecommenderNotification, error)

	// MarkRecommenderRead stamps a recommender notification as read.
	MarkRecommenderRead(ctx context.Context, userID, notificationID uuid.UUID) error

	// ProcessDueReminders turns due visit reminders into inbox notifications,
	// returning how many were processed. Called from the sweep endpoint.
	ProcessDueReminders(ctx context.Context, limit int) (int, error)

	// ProcessUserReminders is the JWT-authenticated variant: it processes only
	// the caller's own due reminders, so a client can refresh its inbox
	// without waiting for the next sweep.
	ProcessUserReminders(ctx context.Context, userID uuid.UUID, limit int) (int, error)
}
