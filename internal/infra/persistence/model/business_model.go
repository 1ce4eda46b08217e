package model

import (
	"time"

	"github.com/google/uuid"
)

// BusinessProfileModel is the GORM-specific struct for the 'business_profiles' table.
type BusinessProfileModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PlaceID        string    `gorm:"type:varchar(255);not null;index"`
	Name           string    `gorm:"type:varchar(255);not null"`
	City           string    `gorm:"type:varchar(100)"`
	State          string    `gorm:"type:varchar(100)"`
	CommissionRate float64   `gorm:"type:decimal(5,4);not null;check:commission_rate >= 0 AND commission_rate <= 1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (BusinessProfileModel) TableName() string {
	return "business_profiles"
}

// BusinessClaimModel is the GORM-specific struct for the 'business_claims' table.
type BusinessClaimModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ClaimantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PlaceID      string    `gorm:"type:varchar(255);not null;index"`
	BusinessName string    `gorm:"type:varchar(255);not null"`
	Evidence     string    `gorm:"type:text"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (BusinessClaimModel) TableName() string {
	return "business_claims"
}
