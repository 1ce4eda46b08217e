package postgres

import (
	"context"
	"time"

	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// requestRepository implements the repository.RequestRepository interface.
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository is the constructor for requestRepository.
func NewRequestRepository(db *gorm.DB) repository.RequestRepository {
	return &requestRepository{
		db: db,
	}
}

// CreateRequest persists a new food request.
func (repo *requestRepository) CreateRequest(ctx context.Context, request *entity.FoodRequest) error {
	requestM := fromRequestDomain(request)

	if err := repo.db.WithContext(ctx).Create(requestM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required request information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create food request")
	}

	request.ID = requestM.ID
	request.CreatedAt = requestM.CreatedAt
	request.UpdatedAt = requestM.UpdatedAt

	return nil
}

// FindRequestByID retrieves a request by its unique ID.
func (repo *requestRepository) FindRequestByID(ctx context.Context, id uuid.UUID) (*entity.FoodRequest, error) {
	var requestM model.FoodRequestModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&requestM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRequestNotFound
		}

		return nil, errors.Wrap(err, "failed to find request by ID")
	}

	return toRequestDomain(&requestM), nil
}

// FindActiveRequests retrieves open requests, newest first, with pagination.
func (repo *requestRepository) FindActiveRequests(ctx context.Context, limit, offset int) ([]*entity.FoodRequest, error) {
	var requestModels []*model.FoodRequestModel

	if err := repo.db.WithContext(ctx).
		Where("status = ?", string(entity.RequestStatusActive)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requestModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find active requests")
	}

	requests := make([]*entity.FoodRequest, 0, len(requestModels))
	for _, requestM := range requestModels {
		requests = append(requests, toRequestDomain(requestM))
	}

	return requests, nil
}

// FindRequestsByRequester retrieves a user's own requests, newest first.
func (repo *requestRepository) FindRequestsByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*entity.FoodRequest, error) {
	var requestModels []*model.FoodRequestModel

	if err := repo.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requestModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find requests by requester")
	}

	requests := make([]*entity.FoodRequest, 0, len(requestModels))
	for _, requestM := range requestModels {
		requests = append(requests, toRequestDomain(requestM))
	}

	return requests, nil
}

// UpdateRequestStatus transitions a request's lifecycle state.
func (repo *requestRepository) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status entity.RequestStatus, closedAt *time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.FoodRequestModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    string(status),
			"closed_at": closedAt,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update request status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRequestNotFound
	}

	return nil
}

// ExpireDueRequests marks all active requests whose window elapsed as expired.
// Returns how many rows were transitioned; called by the worker sweep.
func (repo *requestRepository) ExpireDueRequests(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.FoodRequestModel{}).
		Where("status = ? AND expires_at <= ?", string(entity.RequestStatusActive), now).
		Update("status", string(entity.RequestStatusExpired))

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to expire due requests")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toRequestDomain converts a GORM FoodRequestModel to a domain FoodRequest entity.
func toRequestDomain(data *model.FoodRequestModel) *entity.FoodRequest {
	if data == nil {
		return nil
	}

	return &entity.FoodRequest{
		ID:                    data.ID,
		RequesterID:           data.RequesterID,
		FoodType:              data.FoodType,
		City:                  data.City,
		State:                 data.State,
		Latitude:              data.Latitude,
		Longitude:             data.Longitude,
		ResponseWindowMinutes: data.ResponseWindowMinutes,
		Status:                entity.RequestStatus(data.Status),
		ExpiresAt:             data.ExpiresAt,
		ClosedAt:              data.ClosedAt,
		CreatedAt:             data.CreatedAt,
		UpdatedAt:             data.UpdatedAt,
	}
}

// fromRequestDomain converts a domain FoodRequest entity to a GORM FoodRequestModel.
func fromRequestDomain(data *entity.FoodRequest) *model.FoodRequestModel {
	if data == nil {
		return nil
	}

	return &model.FoodRequestModel{
		ID:                    data.ID,
		RequesterID:           data.RequesterID,
		FoodType:              data.FoodType,
		City:                  data.City,
		State:                 data.State,
		Latitude:              data.Latitude,
		Longitude:             data.Longitude,
		ResponseWindowMinutes: data.ResponseWindowMinutes,
		Status:                string(data.Status),
		ExpiresAt:             data.ExpiresAt,
		ClosedAt:              data.ClosedAt,
		CreatedAt:             data.CreatedAt,
		UpdatedAt:             data.UpdatedAt,
	}
}
