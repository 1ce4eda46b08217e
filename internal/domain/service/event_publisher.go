package service

import (
	"context"
)

// RequestBroadcastEvent carries everything the dispatch worker needs to fan a
// food request out to eligible recipients, so the worker never re-runs matching.
type RequestBroadcastEvent struct {
	RequestID    string   `json:"request_id"`              // The food request being broadcast.
	BroadcastID  string   `json:"broadcast_id"`            // The broadcast record tracking totals.
	TraceID      string   `json:"trace_id,omitempty"`      // For distributed tracing across the publish hop.
	RequesterID  string   `json:"requester_id"`
	FoodType     string   `json:"food_type"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Urgency      string   `json:"urgency"`
	PushUserIDs  []string `json:"push_user_ids"`  // Recipients eligible on the push channel.
	EmailUserIDs []string `json:"email_user_ids"` // Recipients eligible on the email channel.
	SMSUserIDs   []string `json:"sms_user_ids"`   // Recipients eligible on the SMS channel.
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishBroadcastEvent publishes a request broadcast event for async dispatch
	PublishBroadcastEvent(ctx context.Context, event *RequestBroadcastEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
