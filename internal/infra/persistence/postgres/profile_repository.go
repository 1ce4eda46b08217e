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

// profileRepository implements the repository.ProfileRepository interface.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

// CreateProfile persists a new profile for a user.
func (repo *profileRepository) CreateProfile(ctx context.Context, profile *entity.Profile) error {
	profileM := fromProfileDomain(profile)

	if err := repo.db.WithContext(ctx).Create(profileM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("profile already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create profile")
	}

	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

// FindProfileByUserID retrieves the profile belonging to a user.
func (repo *profileRepository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profileM model.ProfileModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile by user ID")
	}

	return toProfileDomain(&profileM), nil
}

// FindProfilesByUserIDs retrieves profiles for a set of users.
func (repo *profileRepository) FindProfilesByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*entity.Profile, error) {
	if len(userIDs) == 0 {
		return []*entity.Profile{}, nil
	}

	var profileModels []*model.ProfileModel

	if err := repo.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&profileModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find profiles by user IDs")
	}

	profiles := make([]*entity.Profile, 0, len(profileModels))
	for _, profileM := range profileModels {
		profiles = append(profiles, toProfileDomain(profileM))
	}

	return profiles, nil
}

// FindNotifiableProfiles retrieves the candidate set for area matching.
// Fine-grained filtering (radius, pause, channel opt-ins) happens in the matcher.
func (repo *profileRepository) FindNotifiableProfiles(ctx context.Context) ([]*entity.Profile, error) {
	var profileModels []*model.ProfileModel

	if err := repo.db.WithContext(ctx).
		Where("notify_recommender = ?", true).
		Find(&profileModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find notifiable profiles")
	}

	profiles := make([]*entity.Profile, 0, len(profileModels))
	for _, profileM := range profileModels {
		profiles = append(profiles, toProfileDomain(profileM))
	}

	return profiles, nil
}

// UpdateProfile persists changes to an existing profile.
func (repo *profileRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	profileM := fromProfileDomain(profile)

	result := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("user_id = ?", profile.UserID).
		Select("display_name", "email", "phone_number", "city", "state",
			"latitude", "longitude", "notification_radius_km",
			"notify_recommender", "recommender_paused", "do_not_disturb",
			"push_new_request", "email_new_request", "sms_new_request",
			"cuisine_expertise").
		Updates(profileM)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update profile")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toProfileDomain converts a GORM ProfileModel to a domain Profile entity.
func toProfileDomain(data *model.ProfileModel) *entity.Profile {
	if data == nil {
		return nil
	}

	return &entity.Profile{
		UserID:               data.UserID,
		DisplayName:          data.DisplayName,
		Email:                data.Email,
		PhoneNumber:          data.PhoneNumber,
		City:                 data.City,
		State:                data.State,
		Latitude:             data.Latitude,
		Longitude:            data.Longitude,
		NotificationRadiusKm: data.NotificationRadiusKm,
		NotifyRecommender:    data.NotifyRecommender,
		RecommenderPaused:    data.RecommenderPaused,
		DoNotDisturb:         data.DoNotDisturb,
		PushNewRequest:       data.PushNewRequest,
		EmailNewRequest:      data.EmailNewRequest,
		SMSNewRequest:        data.SMSNewRequest,
		CuisineExpertise:     data.CuisineExpertise,
		CreatedAt:            data.CreatedAt,
		UpdatedAt:            data.UpdatedAt,
	}
}

// fromProfileDomain converts a domain Profile entity to a GORM ProfileModel.
func fromProfileDomain(data *entity.Profile) *model.ProfileModel {
	if data == nil {
		return nil
	}

	return &model.ProfileModel{
		UserID:               data.UserID,
		DisplayName:          data.DisplayName,
		Email:                data.Email,
		PhoneNumber:          data.PhoneNumber,
		City:                 data.City,
		State:                data.State,
		Latitude:             data.Latitude,
		Longitude:            data.Longitude,
		NotificationRadiusKm: data.NotificationRadiusKm,
		NotifyRecommender:    data.NotifyRecommender,
		RecommenderPaused:    data.RecommenderPaused,
		DoNotDisturb:         data.DoNotDisturb,
		PushNewRequest:       data.PushNewRequest,
		EmailNewRequest:      data.EmailNewRequest,
		SMSNewRequest:        data.SMSNewRequest,
		CuisineExpertise:     data.CuisineExpertise,
		CreatedAt:            data.CreatedAt,
		UpdatedAt:            data.UpdatedAt,
	}
}
