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
	"gorm.io/gorm/clause"
)

// recommendationRepository implements the repository.RecommendationRepository interface.
type recommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository is the constructor for recommendationRepository.
func NewRecommendationRepository(db *gorm.DB) repository.RecommendationRepository {
	return &recommendationRepository{
		db: db,
	}
}

// CreateRecommendation persists a new recommendation. The unique
// (request, recommender) index enforces one answer per recommender.
func (repo *recommendationRepository) CreateRecommendation(ctx context.Context, rec *entity.Recommendation) error {
	recM := fromRecommendationDomain(rec)

	if err := repo.db.WithContext(ctx).Create(recM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrRecommendationExists
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrRequestNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required recommendation information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create recommendation")
	}

	rec.ID = recM.ID
	rec.CreatedAt = recM.CreatedAt

	return nil
}

// FindRecommendationByID retrieves a recommendation by its unique ID.
func (repo *recommendationRepository) FindRecommendationByID(ctx context.Context, id uuid.UUID) (*entity.Recommendation, error) {
	var recM model.RecommendationModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&recM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRecommendationNotFound
		}

		return nil, errors.Wrap(err, "failed to find recommendation by ID")
	}

	return toRecommendationDomain(&recM), nil
}

// FindRecommendationsByRequest retrieves all recommendations for a request, newest first.
func (repo *recommendationRepository) FindRecommendationsByRequest(ctx context.Context, requestID uuid.UUID) ([]*entity.Recommendation, error) {
	var recModels []*model.RecommendationModel

	if err := repo.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&recModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find recommendations by request")
	}

	recs := make([]*entity.Recommendation, 0, len(recModels))
	for _, recM := range recModels {
		recs = append(recs, toRecommendationDomain(recM))
	}

	return recs, nil
}

// CountRecommendationsByRequest counts the recommendations on a request.
func (repo *recommendationRepository) CountRecommendationsByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.RecommendationModel{}).
		Where("request_id = ?", requestID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count recommendations by request")
	}

	return count, nil
}

// CreateDecline records a recommender passing on a request. Duplicate declines
// are silently ignored via ON CONFLICT DO NOTHING.
func (repo *recommendationRepository) CreateDecline(ctx context.Context, decline *entity.RequestDecline) error {
	declineM := fromDeclineDomain(decline)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(declineM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create request decline")
	}

	return nil
}

// HasDeclined reports whether the recommender already passed on the request.
func (repo *recommendationRepository) HasDeclined(ctx context.Context, requestID, recommenderID uuid.UUID) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.RequestDeclineModel{}).
		Where("request_id = ? AND recommender_id = ?", requestID, recommenderID).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check request decline")
	}

	return count > 0, nil
}

// --- Mapper Functions ---

// toRecommendationDomain converts a GORM RecommendationModel to a domain Recommendation entity.
func toRecommendationDomain(data *model.RecommendationModel) *entity.Recommendation {
	if data == nil {
		return nil
	}

	return &entity.Recommendation{
		ID:             data.ID,
		RequestID:      data.RequestID,
		RecommenderID:  data.RecommenderID,
		RestaurantName: data.RestaurantName,
		PlaceID:        data.PlaceID,
		MapsURL:        data.MapsURL,
		Notes:          data.Notes,
		CreatedAt:      data.CreatedAt,
	}
}

// fromRecommendationDomain converts a domain Recommendation entity to a GORM RecommendationModel.
func fromRecommendationDomain(data *entity.Recommendation) *model.RecommendationModel {
	if data == nil {
		return nil
	}

	return &model.RecommendationModel{
		ID:             data.ID,
		RequestID:      data.RequestID,
		RecommenderID:  data.RecommenderID,
		RestaurantName: data.RestaurantName,
		PlaceID:        data.PlaceID,
		MapsURL:        data.MapsURL,
		Notes:          data.Notes,
		CreatedAt:      data.CreatedAt,
	}
}

// fromDeclineDomain converts a domain RequestDecline entity to a GORM RequestDeclineModel.
func fromDeclineDomain(data *entity.RequestDecline) *model.RequestDeclineModel {
	if data == nil {
		return nil
	}

	return &model.RequestDeclineModel{
		ID:            data.ID,
		RequestID:     data.RequestID,
		RecommenderID: data.RecommenderID,
		CreatedAt:     data.CreatedAt,
	}
}
