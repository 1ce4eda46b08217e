package repository

import (
	"context"
	"errors"
	"time"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRequestNotFound is returned when a food request is not found.
var ErrRequestNotFound = errors.New("food request not found")

// RequestRepository defines the interface for food request persistence.
type RequestRepository interface {
	// CreateRequest persists a new food request.
	CreateRequest(ctx context.Context, request *entity.FoodRequest) error

	// FindRequestByID retrieves a request by its unique ID.
	FindRequestByID(ctx context.Context, id uuid.UUID) (*entity.FoodRequest, error)

	// FindActiveRequests retrieves open requests, newest first, with pagination.
	FindActiveRequests(ctx context.Context, limit, offset int) ([]*entity.FoodRequest, error)

	// FindRequestsByRequester retrieves a user's own requests, newest first.
	FindRequestsByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*entity.FoodRequest, error)

	// UpdateRequestStatus transitions a request's lifecycle state.
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status entity.RequestStatus, closedAt *time.Time) error

	// ExpireDueRequests marks all active requests whose window elapsed before
	// the given time as expired, returning how many were transitioned.
	ExpireDueRequests(ctx context.Context, now time.Time) (int64, error)
}
