package usecase

import (
	"context"

	"github.com/google/uuid"
)

// BroadcastUsecase defines the interface for fanning a food request out to
// eligible recommenders. It runs the matching pass, writes the in-app inbox
// entries synchronously, and hands channel delivery to the worker via the
// event publisher.
type BroadcastUsecase interface {
	BroadcastRequest(ctx context.Context, requestID uuid.UUID) (*BroadcastResult, error)
}

// BroadcastResult summarizes one fan-out pass.
type BroadcastResult struct {
	BroadcastID   uuid.UUID `json:"broadcast_id"`
	TotalEligible int       `json:"total_eligible"` // Profiles matched by the eligibility pass.
	InAppCreated  int       `json:"in_app_created"` // New inbox rows; repeats upsert to zero.
	PushTargets   int       `json:"push_targets"`
	EmailTargets  int       `json:"email_targets"`
	SMSTargets    int       `json:"sms_targets"`
}
