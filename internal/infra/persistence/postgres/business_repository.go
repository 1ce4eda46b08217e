package postgres

import (
	"context"

	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// businessRepository implements the repository.BusinessRepository interface.
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository is the constructor for businessRepository.
func NewBusinessRepository(db *gorm.DB) repository.BusinessRepository {
	return &businessRepository{
		db: db,
	}
}

// CreateClaim persists a new business ownership claim.
func (repo *businessRepository) CreateClaim(ctx context.Context, claim *entity.BusinessClaim) error {
	claimM := fromClaimDomain(claim)

	if err := repo.db.WithContext(ctx).Create(claimM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required claim information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create business claim")
	}

	claim.ID = claimM.ID
	claim.CreatedAt = claimM.CreatedAt

	return nil
}

// FindClaimByID retrieves a claim by its unique ID.
func (repo *businessRepository) FindClaimByID(ctx context.Context, id uuid.UUID) (*entity.BusinessClaim, error) {
	var claimM model.BusinessClaimModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&claimM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClaimNotFound
		}

		return nil, errors.Wrap(err, "failed to find claim by ID")
	}

	return toClaimDomain(&claimM), nil
}

// FindPendingClaimByClaimantAndPlace checks for an existing open claim.
func (repo *businessRepository) FindPendingClaimByClaimantAndPlace(ctx context.Context, claimantID uuid.UUID, placeID string) (*entity.BusinessClaim, error) {
	var claimM model.BusinessClaimModel

	if err := repo.db.WithContext(ctx).
		Where("claimant_id = ? AND place_id = ? AND status = ?", claimantID, placeID, string(entity.ClaimStatusPending)).
		First(&claimM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClaimNotFound
		}

		return nil, errors.Wrap(err, "failed to find pending claim")
	}

	return toClaimDomain(&claimM), nil
}

// FindClaimsByStatus retrieves claims in a given state for admin review.
func (repo *businessRepository) FindClaimsByStatus(ctx context.Context, status entity.ClaimStatus, limit, offset int) ([]*entity.BusinessClaim, error) {
	var claimModels []*model.BusinessClaimModel

	if err := repo.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&claimModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find claims by status")
	}

	claims := make([]*entity.BusinessClaim, 0, len(claimModels))
	for _, claimM := range claimModels {
		claims = append(claims, toClaimDomain(claimM))
	}

	return claims, nil
}

// UpdateClaim persists a claim review decision.
func (repo *businessRepository) UpdateClaim(ctx context.Context, claim *entity.BusinessClaim) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BusinessClaimModel{}).
		Where("id = ?", claim.ID).
		Updates(map[string]any{
			"status":      string(claim.Status),
			"reviewed_by": claim.ReviewedBy,
			"reviewed_at": claim.ReviewedAt,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update claim")
	}

	if result.RowsAffected == 0 {
		return repository.ErrClaimNotFound
	}

	return nil
}

// CreateBusinessProfile persists a new business profile.
func (repo *businessRepository) CreateBusinessProfile(ctx context.Context, business *entity.BusinessProfile) error {
	businessM := fromBusinessDomain(business)

	if err := repo.db.WithContext(ctx).Create(businessM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("owner already has a business profile")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create business profile")
	}

	business.ID = businessM.ID
	business.CreatedAt = businessM.CreatedAt
	business.UpdatedAt = businessM.UpdatedAt

	return nil
}

// FindBusinessByID retrieves a business profile by its unique ID.
func (repo *businessRepository) FindBusinessByID(ctx context.Context, id uuid.UUID) (*entity.BusinessProfile, error) {
	var businessM model.BusinessProfileModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&businessM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business by ID")
	}

	return toBusinessDomain(&businessM), nil
}

// FindBusinessByOwner retrieves the business profile managed by a user.
func (repo *businessRepository) FindBusinessByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.BusinessProfile, error) {
	var businessM model.BusinessProfileModel

	if err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&businessM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business by owner")
	}

	return toBusinessDomain(&businessM), nil
}

// UpdateBusinessProfile persists changes to a business profile.
func (repo *businessRepository) UpdateBusinessProfile(ctx context.Context, business *entity.BusinessProfile) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BusinessProfileModel{}).
		Where("id = ?", business.ID).
		Updates(map[string]any{
			"name":            business.Name,
			"city":            business.City,
			"state":           business.State,
			"commission_rate": business.CommissionRate,
		})

	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return domainerrors.ErrValidationFailed.WrapMessage("commission rate must be between 0 and 1")
		}

		return errors.Wrap(result.Error, "failed to update business profile")
	}

	if result.RowsAffected == 0 {
		return repository.ErrBusinessNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toClaimDomain(data *model.BusinessClaimModel) *entity.BusinessClaim {
	if data == nil {
		return nil
	}

	return &entity.BusinessClaim{
		ID:           data.ID,
		ClaimantID:   data.ClaimantID,
		PlaceID:      data.PlaceID,
		BusinessName: data.BusinessName,
		Evidence:     data.Evidence,
		Status:       entity.ClaimStatus(data.Status),
		ReviewedBy:   data.ReviewedBy,
		ReviewedAt:   data.ReviewedAt,
		CreatedAt:    data.CreatedAt,
	}
}

func fromClaimDomain(data *entity.BusinessClaim) *model.BusinessClaimModel {
	if data == nil {
		return nil
	}

	return &model.BusinessClaimModel{
		ID:           data.ID,
		ClaimantID:   data.ClaimantID,
		PlaceID:      data.PlaceID,
		BusinessName: data.BusinessName,
		Evidence:     data.Evidence,
		Status:       string(data.Status),
		ReviewedBy:   data.ReviewedBy,
		ReviewedAt:   data.ReviewedAt,
		CreatedAt:    data.CreatedAt,
	}
}

func toBusinessDomain(data *model.BusinessProfileModel) *entity.BusinessProfile {
	if data == nil {
		return nil
	}

	return &entity.BusinessProfile{
		ID:             data.ID,
		OwnerID:        data.OwnerID,
		PlaceID:        data.PlaceID,
		Name:           data.Name,
		City:           data.City,
		State:          data.State,
		CommissionRate: data.CommissionRate,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

func fromBusinessDomain(data *entity.BusinessProfile) *model.BusinessProfileModel {
	if data == nil {
		return nil
	}

	return &model.BusinessProfileModel{
		ID:             data.ID,
		OwnerID:        data.OwnerID,
		PlaceID:        data.PlaceID,
		Name:           data.Name,
		City:           data.City,
		State:          data.State,
		CommissionRate: data.CommissionRate,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}
