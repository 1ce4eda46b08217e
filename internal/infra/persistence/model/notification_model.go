package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationModel is the GORM-specific struct for the 'notifications' table.
// It represents a requester inbox entry.
type NotificationModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type      string     `gorm:"type:varchar(50);not null"`
	Title     string     `gorm:"type:text;not null"`
	Body      string     `gorm:"type:text"`
	RequestID *uuid.UUID `gorm:"type:uuid"`
	ReadAt    *time.Time
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationModel) TableName() string {
	return "notifications"
}

// RecommenderNotificationModel is the GORM-specific struct for the
// 'recommender_notifications' table. The composite unique index backs the
// idempotent broadcast upsert.
type RecommenderNotificationModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RecommenderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recommender_notification_dedup"`
	RequestID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recommender_notification_dedup"`
	Type          string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_recommender_notification_dedup"`
	Title         string    `gorm:"type:text;not null"`
	Body          string    `gorm:"type:text"`
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (RecommenderNotificationModel) TableName() string {
	return "recommender_notifications"
}

// RequestBroadcastModel is the GORM-specific struct for the 'request_broadcasts' table.
type RequestBroadcastModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RequestID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TotalEligible int       `gorm:"not null;default:0"`
	TotalSent     int       `gorm:"not null;default:0"`
	TotalFailed   int       `gorm:"not null;default:0"`
	PublishedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (RequestBroadcastModel) TableName() string {
	return "request_broadcasts"
}

// NotificationDeliveryModel is the GORM-specific struct for the
// 'notification_deliveries' table. It logs one delivery attempt per channel
// per recipient.
type NotificationDeliveryModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	BroadcastID  uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Channel      string    `gorm:"type:varchar(20);not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:'sent'"`
	ErrorMessage string    `gorm:"type:text"`
	SentAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationDeliveryModel) TableName() string {
	return "notification_deliveries"
}
