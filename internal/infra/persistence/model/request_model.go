package model

import (
	"time"

	"github.com/google/uuid"
)

// FoodRequestModel is the GORM-specific struct for the 'food_requests' table.
type FoodRequestModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RequesterID           uuid.UUID `gorm:"type:uuid;not null;index"`
	FoodType              string    `gorm:"type:varchar(100);not null"`
	City                  string    `gorm:"type:varchar(100);index"`
	State                 string    `gorm:"type:varchar(100)"`
	Latitude              *float64  `gorm:"type:decimal(10,8)"`
	Longitude             *float64  `gorm:"type:decimal(11,8)"`
	ResponseWindowMinutes int       `gorm:"not null"`
	Status                string    `gorm:"type:varchar(20);not null;default:'active';index"`
	ExpiresAt             time.Time `gorm:"not null;index"`
	ClosedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName explicitly sets the table name for GORM.
func (FoodRequestModel) TableName() string {
	return "food_requests"
}
