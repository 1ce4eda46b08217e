package usecase

import (
	"context"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// RequestUsecase defines the interface for the food request lifecycle.
type RequestUsecase interface {
	// CreateRequest opens a new food request and triggers its broadcast.
	CreateRequest(ctx context.Context, requesterID uuid.UUID, input *CreateRequestInput) (*entity.FoodRequest, error)

	// GetRequest retrieves a single request.
	GetRequest(ctx context.Context, id uuid.UUID) (*entity.FoodRequest, error)

	// ListActiveRequests pages through open requests, newest first.
	ListActiveRequests(ctx context.Context, limit, offset int) (*RequestListOutput, error)

	// ListMyRequests pages through a requester's own requests, newest first.
	ListMyRequests(ctx context.Context, requesterID uuid.UUID, limit, offset int) (*RequestListOutput, error)

	// CloseRequest closes an open request. Only its requester may close it.
	CloseRequest(ctx context.Context, requesterID, requestID uuid.UUID) error

	// ExpireDueRequests transitions requests whose response window elapsed,
	// returning how many were expired. Called from the sweep endpoint.
	ExpireDueRequests(ctx context.Context) (int64, error)
}

// CreateRequestInput defines the data required to open a food request.
type CreateRequestInput struct {
	FoodType              string   `json:"food_type"`
	City                  string   `json:"city"`
	State                 string   `json:"state"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	ResponseWindowMinutes int      `json:"response_window_minutes"`
}

// RequestListOutput is a page of requests plus a has-more marker.
type RequestListOutput struct {
	Requests []*entity.FoodRequest `json:"requests"`
	HasMore  bool                  `json:"has_more"`
}
