package service

import (
	"time"

	"github.com/google/uuid"
)

// Ping is a realtime nudge for a connected client. ID plus Type identifies a
// ping; the same pair is never surfaced to a user twice while it is visible
// or queued.
type Ping struct {
	ID    uuid.UUID `json:"id"`
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Body  string    `json:"body"`

	// ShowAt defers display until the request's response window closes; the
	// zero value shows the ping immediately.
	ShowAt time.Time `json:"show_at,omitempty"`
}

// StreamPublisher pushes pings to users connected on the realtime stream.
// Publishing to a user with no open connection is a no-op.
type StreamPublisher interface {
	PublishPing(userID uuid.UUID, ping *Ping)
}
