package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitReminderModel is the GORM-specific struct for the 'visit_reminders' table.
type VisitReminderModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	RecommendationID uuid.UUID `gorm:"type:uuid;not null"`
	RestaurantName   string    `gorm:"type:varchar(255);not null"`
	FoodType         string    `gorm:"type:varchar(100)"`
	ScheduledFor     time.Time `gorm:"not null;index"`
	Sent             bool      `gorm:"not null;default:false;index"`
	CreatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (VisitReminderModel) TableName() string {
	return "visit_reminders"
}
