package model

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationModel is the GORM-specific struct for the 'recommendations' table.
// The composite unique index enforces one recommendation per recommender per request.
type RecommendationModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RequestID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recommendation_request_recommender"`
	RecommenderID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recommendation_request_recommender"`
	RestaurantName string    `gorm:"type:varchar(255);not null"`
	PlaceID        string    `gorm:"type:varchar(255);index"`
	MapsURL        string    `gorm:"type:text"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (RecommendationModel) TableName() string {
	return "recommendations"
}

// RequestDeclineModel is the GORM-specific struct for the 'request_declines' table.
type RequestDeclineModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	RequestID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_decline_request_recommender"`
	RecommenderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_decline_request_recommender"`
	CreatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (RequestDeclineModel) TableName() string {
	return "request_declines"
}
