package impl

import (
	"context"
	"log/slog"

	"cravlr/config"
	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	profileRepo repository.ProfileRepository
	maxRadiusKm float64
	logger      *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	maxRadiusKm := 0.0
	if cfg != nil && cfg.Matching != nil {
		maxRadiusKm = cfg.Matching.MaxRadiusKm
	}

	return &profileService{
		profileRepo: profileRepo,
		maxRadiusKm: maxRadiusKm,
		logger:      logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves a user's profile.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	srv.log(ctx).Debug("Getting profile", slog.Any("userID", userID))

	profile, err := srv.profileRepo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "profile not found")
		}

		return nil, errors.Wrap(err, "failed to find profile")
	}

	return profile, nil
}

// UpdateProfile applies the non-nil fields of the input to a user's profile.
func (srv *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.Profile, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("userID", userID))

	profile, err := srv.profileRepo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "profile not found")
		}

		return nil, errors.Wrap(err, "failed to find profile")
	}

	if input.NotificationRadiusKm != nil {
		radius := *input.NotificationRadiusKm
		if radius < 0 || (srv.maxRadiusKm > 0 && radius > srv.maxRadiusKm) {
			return nil, errors.Wrap(domainerrors.ErrValidationFailed, "notification radius out of range")
		}
		profile.NotificationRadiusKm = radius
	}

	// Coordinates must be updated together so the profile never carries half a fix.
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "latitude and longitude must be provided together")
	}
	if input.Latitude != nil {
		profile.Latitude = input.Latitude
		profile.Longitude = input.Longitude
	}

	applyProfileFields(profile, input)

	if err := srv.profileRepo.UpdateProfile(ctx, profile); err != nil {
		srv.log(ctx).Error("Failed to update profile", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to update profile")
	}

	return profile, nil
}

func applyProfileFields(profile *entity.Profile, input *usecase.UpdateProfileInput) {
	if input.DisplayName != nil {
		profile.DisplayName = *input.DisplayName
	}
	if input.PhoneNumber != nil {
		profile.PhoneNumber = *input.PhoneNumber
	}
	if input.City != nil {
		profile.City = *input.City
	}
	if input.State != nil {
		profile.State = *input.State
	}
	if input.NotifyRecommender != nil {
		profile.NotifyRecommender = *input.NotifyRecommender
	}
	if input.RecommenderPaused != nil {
		profile.RecommenderPaused = *input.RecommenderPaused
	}
	if input.DoNotDisturb != nil {
		profile.DoNotDisturb = *input.DoNotDisturb
	}
	if input.PushNewRequest != nil {
		profile.PushNewRequest = *input.PushNewRequest
	}
	if input.EmailNewRequest != nil {
		profile.EmailNewRequest = *input.EmailNewRequest
	}
	if input.SMSNewRequest != nil {
		profile.SMSNewRequest = *input.SMSNewRequest
	}
	if input.CuisineExpertise != nil {
		profile.CuisineExpertise = *input.CuisineExpertise
	}
}
