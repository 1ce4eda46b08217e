package usecase

import (
	"context"

	"cravlr/internal/domain/service"
)

// DispatchUsecase defines the interface for the worker-side delivery of a
// broadcast event across push, email, and SMS channels.
type DispatchUsecase interface {
	// DispatchBroadcast delivers one broadcast event. Delivery results are
	// logged per recipient and rolled up onto the broadcast record. Errors
	// from infrastructure (database unavailable) are returned so the caller
	// can request a retry; per-recipient send failures are not errors.
	DispatchBroadcast(ctx context.Context, event *service.RequestBroadcastEvent) (*DispatchResult, error)
}

// DispatchResult summarizes one delivery pass over all channels.
type DispatchResult struct {
	PushSent    int `json:"push_sent"`
	PushFailed  int `json:"push_failed"`
	EmailSent   int `json:"email_sent"`
	EmailFailed int `json:"email_failed"`
	SMSSent     int `json:"sms_sent"`
	SMSFailed   int `json:"sms_failed"`
}

// TotalSent sums confirmed deliveries across channels.
func (r *DispatchResult) TotalSent() int {
	return r.PushSent + r.EmailSent + r.SMSSent
}

// TotalFailed sums failed deliveries across channels.
func (r *DispatchResult) TotalFailed() int {
	return r.PushFailed + r.EmailFailed + r.SMSFailed
}
