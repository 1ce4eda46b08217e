package repository

import (
	"context"
	"errors"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for notification persistence.
var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrBroadcastNotFound is returned when a broadcast record is not found.
	ErrBroadcastNotFound = errors.New("broadcast not found")
)

// NotificationRepository defines the interface for inbox and broadcast persistence.
type NotificationRepository interface {
	// CreateNotification persists a requester inbox entry.
	CreateNotification(ctx context.Context, notification *entity.Notification) error

	// FindNotificationsByUser retrieves a user's inbox, newest first.
	FindNotificationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error)

	// CountUnreadByUser counts a user's unread inbox entries.
	CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkNotificationRead stamps a notification as read by its owner.
	MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error

	// UpsertRecommenderNotifications inserts recommender inbox entries,
	// silently skipping rows that violate the (recommender, request, type)
	// uniqueness so repeat broadcasts stay idempotent. Returns how many rows
	// were actually inserted.
	UpsertRecommenderNotifications(ctx context.Context, notifications []*entity.RecommenderNotification) (int64, error)

	// FindRecommenderNotifications retrieves a recommender's inbox, newest first.
	FindRecommenderNotifications(ctx context.Context, recommenderID uuid.UUID, limit, offset int) ([]*entity.RecommenderNotification, error)

	// MarkRecommenderNotificationRead stamps a recommender notification as read.
	MarkRecommenderNotificationRead(ctx context.Context, recommenderID, notificationID uuid.UUID) error

	// CreateBroadcast persists the fan-out record for a request.
	CreateBroadcast(ctx context.Context, broadcast *entity.RequestBroadcast) error

	// FindBroadcastByRequest retrieves the broadcast record for a request.
	FindBroadcastByRequest(ctx context.Context, requestID uuid.UUID) (*entity.RequestBroadcast, error)

	// UpdateBroadcastTotals updates the sent and failed counters for a broadcast.
	UpdateBroadcastTotals(ctx context.Context, id uuid.UUID, totalSent, totalFailed int) error

	// BatchCreateDeliveries persists per-channel delivery log entries.
	BatchCreateDeliveries(ctx context.Context, deliveries []*entity.NotificationDelivery) error
}
