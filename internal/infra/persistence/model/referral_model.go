package model

import (
	"time"

	"github.com/google/uuid"
)

// ReferralLinkModel is the GORM-specific struct for the 'referral_links' table.
type ReferralLinkModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RecommendationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	RecommenderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Code             string    `gorm:"type:varchar(32);unique;not null"`
	DestinationURL   string    `gorm:"type:text;not null"`
	ExpiresAt        time.Time `gorm:"not null"`
	CreatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (ReferralLinkModel) TableName() string {
	return "referral_links"
}

// ReferralClickModel is the GORM-specific struct for the 'referral_clicks' table.
// The ip_address and clicked_at columns back the dedup and rate-limit queries.
type ReferralClickModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	LinkID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecommenderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterID   *uuid.UUID `gorm:"type:uuid"`
	IPAddress     string     `gorm:"type:varchar(45);not null;index:idx_click_ip_time"`
	UserAgent     string     `gorm:"type:text"`
	// No default tag on Counted: GORM would skip a false value on insert and
	// let the column default win, miscounting deduplicated clicks.
	Counted       bool       `gorm:"not null"`
	ClickedAt     time.Time  `gorm:"not null;index:idx_click_ip_time"`
}

// TableName explicitly sets the table name for GORM.
func (ReferralClickModel) TableName() string {
	return "referral_clicks"
}

// ReferralConversionModel is the GORM-specific struct for the
// 'referral_conversions' table. The unique click_id enforces one conversion
// per click.
type ReferralConversionModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ClickID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CommissionAmount float64   `gorm:"type:decimal(10,2);not null"`
	ConvertedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ReferralConversionModel) TableName() string {
	return "referral_conversions"
}
