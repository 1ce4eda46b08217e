// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies a notification delivery channel.
type Channel string

const (
	// ChannelPush delivers via FCM to registered devices.
	ChannelPush Channel = "push"
	// ChannelEmail delivers via the SMTP broadcast sender.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers via OneSignal.
	ChannelSMS Channel = "sms"
	// ChannelInApp delivers to the in-app inbox and live ping stream.
	ChannelInApp Channel = "in_app"
)

// Notification kinds shared between the requester and recommender inboxes.
const (
	NotificationTypeNearbyRequest     = "nearby_request"
	NotificationTypeNewRecommendation = "new_recommendation"
	NotificationTypeVisitReminder     = "visit_reminder"
)

// Notification is an in-app inbox entry for a requester.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`    // The inbox owner.
	Type      string     `json:"type"`       // One of the NotificationType constants.
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	RequestID *uuid.UUID `json:"request_id"` // The food request this relates to, when applicable.
	ReadAt    *time.Time `json:"read_at"`    // Nil until the user opens it.
	CreatedAt time.Time  `json:"created_at"`
}

// RecommenderNotification is an in-app entry telling a recommender about a
// nearby request. Rows are unique per (recommender, request, type) so repeat
// broadcasts never duplicate them.
type RecommenderNotification struct {
	ID            uuid.UUID  `json:"id"`
	RecommenderID uuid.UUID  `json:"recommender_id"`
	RequestID     uuid.UUID  `json:"request_id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	ReadAt        *time.Time `json:"read_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RequestBroadcast tracks the fan-out totals for one food request.
type RequestBroadcast struct {
	ID            uuid.UUID `json:"id"`
	RequestID     uuid.UUID `json:"request_id"`
	TotalEligible int       `json:"total_eligible"` // Recipients matched by the eligibility pass.
	TotalSent     int       `json:"total_sent"`     // Deliveries confirmed across all channels.
	TotalFailed   int       `json:"total_failed"`   // Deliveries that errored.
	PublishedAt   time.Time `json:"published_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NotificationDelivery is a log entry for a single delivery attempt on one
// channel to one recipient.
type NotificationDelivery struct {
	ID           uuid.UUID `json:"id"`
	BroadcastID  uuid.UUID `json:"broadcast_id"` // The broadcast this delivery belongs to.
	RecipientID  uuid.UUID `json:"recipient_id"`
	Channel      Channel   `json:"channel"`
	Status       string    `json:"status"` // sent or failed.
	ErrorMessage string    `json:"error_message"`
	SentAt       time.Time `json:"sent_at"`
}
