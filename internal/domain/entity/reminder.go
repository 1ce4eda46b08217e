package entity

import (
	"time"

	"github.com/google/uuid"
)

// VisitReminder schedules a "did you visit?" follow-up after a requester
// saves a recommendation. Due reminders are swept by the worker and turned
// into inbox notifications.
type VisitReminder struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`           // Who gets the reminder.
	RecommendationID uuid.UUID `json:"recommendation_id"` // The saved recommendation being followed up on.
	RestaurantName   string    `json:"restaurant_name"`
	FoodType         string    `json:"food_type"`
	ScheduledFor     time.Time `json:"scheduled_for"`
	Sent             bool      `json:"sent"`
	CreatedAt        time.Time `json:"created_at"`
}
