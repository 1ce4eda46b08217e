package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileModel mirrors the 'profiles' table. UserID references users.id (UUID).
// The notification preference columns drive the broadcast eligibility query.
type ProfileModel struct {
	UserID               uuid.UUID `gorm:"primaryKey;type:uuid"`
	DisplayName          string    `gorm:"type:varchar(100);not null"`
	Email                string    `gorm:"type:varchar(255)"`
	PhoneNumber          string    `gorm:"type:varchar(20)"`
	City                 string    `gorm:"type:varchar(100);index"`
	State                string    `gorm:"type:varchar(100)"`
	Latitude             *float64  `gorm:"type:decimal(10,8)"`
	Longitude            *float64  `gorm:"type:decimal(11,8)"`
	NotificationRadiusKm float64   `gorm:"not null;default:0"`
	NotifyRecommender    bool      `gorm:"not null;default:true;index"`
	RecommenderPaused    bool      `gorm:"not null;default:false"`
	DoNotDisturb         bool      `gorm:"not null;default:false"`
	PushNewRequest       bool      `gorm:"not null;default:true"`
	EmailNewRequest      bool      `gorm:"not null;default:true"`
	SMSNewRequest        bool      `gorm:"not null;default:false"`
	CuisineExpertise     []string  `gorm:"type:jsonb;serializer:json"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfileModel) TableName() string {
	return "profiles"
}
