package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cravlr/config"
	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultMaxRecommendationsPerRequest = 10
	defaultReminderDelay                = 48 * time.Hour
	maxStoredNoteLength                 = 500
)

// recommendationService implements the RecommendationUsecase interface.
type recommendationService struct {
	txManager          repository.TransactionManager
	recommendationRepo repository.RecommendationRepository
	maxPerRequest      int
	logger             *slog.Logger
}

// RecommendationServiceParams holds dependencies for recommendationService, injected by Fx.
type RecommendationServiceParams struct {
	fx.In

	TxManager          repository.TransactionManager
	RecommendationRepo repository.RecommendationRepository
	Config             *config.Config
	Logger             *slog.Logger
}

// NewRecommendationService is the constructor for recommendationService.
func NewRecommendationService(params RecommendationServiceParams) usecase.RecommendationUsecase {
	maxPerRequest := defaultMaxRecommendationsPerRequest
	if params.Config != nil && params.Config.Requests != nil && params.Config.Requests.MaxRecommendationsPerRequest > 0 {
		maxPerRequest = params.Config.Requests.MaxRecommendationsPerRequest
	}

	return &recommendationService{
		txManager:          params.TxManager,
		recommendationRepo: params.RecommendationRepo,
		maxPerRequest:      maxPerRequest,
		logger:             params.Logger,
	}
}

func (srv *recommendationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitRecommendation records a recommender's answer to an open request.
// The per-request cap and the one-per-recommender rule are both enforced
// inside one transaction so concurrent submissions cannot overshoot them.
func (srv *recommendationService) SubmitRecommendation(ctx context.Context, recommenderID uuid.UUID, input *usecase.SubmitRecommendationInput) (*entity.Recommendation, error) {
	srv.log(ctx).Info("Submitting recommendation", slog.Any("requestID", input.RequestID), slog.Any("recommenderID", recommenderID))

	if input.RestaurantName == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "restaurant name is required")
	}
	if len(input.Notes) > maxStoredNoteLength {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "notes too long")
	}

	var recommendation *entity.Recommendation
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		requestRepo := repoFactory.RequestRepo()
		recommendationRepo := repoFactory.RecommendationRepo()
		notificationRepo := repoFactory.NotificationRepo()

		request, findErr := requestRepo.FindRequestByID(ctx, input.RequestID)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrRequestNotFound) {
				return errors.Wrap(domainerrors.ErrRequestNotFound, "request not found")
			}

			return errors.Wrap(findErr, "failed to find request")
		}

		if !request.IsOpen(time.Now()) {
			return errors.Wrap(domainerrors.ErrRequestClosed, "request is no longer accepting recommendations")
		}
		if request.RequesterID == recommenderID {
			return errors.Wrap(domainerrors.ErrValidationFailed, "cannot recommend on your own request")
		}

		count, countErr := recommendationRepo.CountRecommendationsByRequest(ctx, input.RequestID)
		if countErr != nil {
			return errors.Wrap(countErr, "failed to count recommendations")
		}
		if count >= int64(srv.maxPerRequest) {
			return errors.Wrap(domainerrors.ErrRecommendationLimitReached, "request already has the maximum number of recommendations")
		}

		recommendation = &entity.Recommendation{
			RequestID:      input.RequestID,
			RecommenderID:  recommenderID,
			RestaurantName: input.RestaurantName,
			PlaceID:        input.PlaceID,
			MapsURL:        input.MapsURL,
			Notes:          input.Notes,
		}
		if createErr := recommendationRepo.CreateRecommendation(ctx, recommendation); createErr != nil {
			if errors.Is(createErr, repository.ErrRecommendationExists) {
				return errors.Wrap(domainerrors.ErrDuplicateRecommendation, "recommender already answered this request")
			}

			return errors.Wrap(createErr, "failed to create recommendation")
		}

		// Tell the requester right away.
		notification := &entity.Notification{
			UserID:    request.RequesterID,
			Type:      entity.NotificationTypeNewRecommendation,
			Title:     "New recommendation",
			Body:      fmt.Sprintf("Someone recommended %s for your %s request.", input.RestaurantName, request.FoodType),
			RequestID: &request.ID,
		}
		if notifyErr := notificationRepo.CreateNotification(ctx, notification); notifyErr != nil {
			return errors.Wrap(notifyErr, "failed to notify requester")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to submit recommendation", slog.Any("requestID", input.RequestID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute recommendation transaction")
	}

	return recommendation, nil
}

// DeclineRequest records that a recommender is passing on a request.
func (srv *recommendationService) DeclineRequest(ctx context.Context, recommenderID, requestID uuid.UUID) error {
	declined, err := srv.recommendationRepo.HasDeclined(ctx, requestID, recommenderID)
	if err != nil {
		return errors.Wrap(err, "failed to check existing decline")
	}
	if declined {
		return nil
	}

	decline := &entity.RequestDecline{
		RequestID:     requestID,
		RecommenderID: recommenderID,
	}
	if err := srv.recommendationRepo.CreateDecline(ctx, decline); err != nil {
		return errors.Wrap(err, "failed to record decline")
	}

	return nil
}

// ListByRequest retrieves the raw recommendations on a request.
func (srv *recommendationService) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*entity.Recommendation, error) {
	recommendations, err := srv.recommendationRepo.FindRecommendationsByRequest(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recommendations")
	}

	return recommendations, nil
}

// SaveRecommendation saves a recommendation for the requester and schedules a
// visit reminder.
func (srv *recommendationService) SaveRecommendation(ctx context.Context, userID, recommendationID uuid.UUID, input *usecase.SaveRecommendationInput) error {
	srv.log(ctx).Info("Saving recommendation", slog.Any("userID", userID), slog.Any("recommendationID", recommendationID))

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		recommendationRepo := repoFactory.RecommendationRepo()
		requestRepo := repoFactory.RequestRepo()
		reminderRepo := repoFactory.ReminderRepo()

		recommendation, err := recommendationRepo.FindRecommendationByID(ctx, recommendationID)
		if err != nil {
			if errors.Is(err, repository.ErrRecommendationNotFound) {
				return errors.Wrap(domainerrors.ErrRecommendationNotFound, "recommendation not found")
			}

			return errors.Wrap(err, "failed to find recommendation")
		}

		request, err := requestRepo.FindRequestByID(ctx, recommendation.RequestID)
		if err != nil {
			return errors.Wrap(err, "failed to find request for recommendation")
		}
		if request.RequesterID != userID {
			return errors.Wrap(domainerrors.ErrForbidden, "recommendation does not belong to your request")
		}

		scheduledFor := time.Now().Add(defaultReminderDelay)
		if input != nil && input.RemindAt != nil {
			scheduledFor = *input.RemindAt
		}

		reminder := &entity.VisitReminder{
			UserID:           userID,
			RecommendationID: recommendationID,
			RestaurantName:   recommendation.RestaurantName,
			FoodType:         request.FoodType,
			ScheduledFor:     scheduledFor,
		}
		if err := reminderRepo.CreateReminder(ctx, reminder); err != nil {
			return errors.Wrap(err, "failed to schedule visit reminder")
		}

		return nil
	})
}
