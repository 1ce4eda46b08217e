package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/matching"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// broadcastService implements the BroadcastUsecase interface. It runs the
// eligibility pass, writes the in-app inbox entries, and publishes the event
// that the dispatch worker turns into push, email, and SMS deliveries.
type broadcastService struct {
	txManager       repository.TransactionManager
	profileRepo     repository.ProfileRepository
	eventPublisher  service.EventPublisher
	streamPublisher service.StreamPublisher
	logger          *slog.Logger
}

// BroadcastServiceParams holds dependencies for broadcastService, injected by Fx.
type BroadcastServiceParams struct {
	fx.In

	TxManager       repository.TransactionManager
	ProfileRepo     repository.ProfileRepository
	EventPublisher  service.EventPublisher
	StreamPublisher service.StreamPublisher `optional:"true"`
	Logger          *slog.Logger
}

// NewBroadcastService is the constructor for broadcastService.
func NewBroadcastService(params BroadcastServiceParams) usecase.BroadcastUsecase {
	return &broadcastService{
		txManager:       params.TxManager,
		profileRepo:     params.ProfileRepo,
		eventPublisher:  params.EventPublisher,
		streamPublisher: params.StreamPublisher,
		logger:          params.Logger,
	}
}

func (srv *broadcastService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// BroadcastRequest fans a food request out to every eligible recommender.
// Calling it again for the same request is safe: the in-app upsert skips rows
// that already exist and the broadcast record is reused.
func (srv *broadcastService) BroadcastRequest(ctx context.Context, requestID uuid.UUID) (*usecase.BroadcastResult, error) {
	srv.log(ctx).Info("Broadcasting food request", slog.Any("requestID", requestID))

	// Candidate set is every profile that has not opted out; the matcher does
	// the per-profile geography and preference filtering.
	candidates, err := srv.profileRepo.FindNotifiableProfiles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load notifiable profiles")
	}

	var (
		request  *entity.FoodRequest
		result   *usecase.BroadcastResult
		eligible []*entity.Profile
	)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		requestRepo := repoFactory.RequestRepo()
		notificationRepo := repoFactory.NotificationRepo()

		found, findErr := requestRepo.FindRequestByID(ctx, requestID)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrRequestNotFound) {
				return errors.Wrap(domainerrors.ErrRequestNotFound, "request not found")
			}

			return errors.Wrap(findErr, "failed to find request")
		}
		request = found

		if !request.IsOpen(time.Now()) {
			return errors.Wrap(domainerrors.ErrRequestClosed, "request is no longer open")
		}

		eligible = matching.EligibleRecipients(request, candidates, entity.ChannelInApp)

		broadcast, findErr := notificationRepo.FindBroadcastByRequest(ctx, requestID)
		if errors.Is(findErr, repository.ErrBroadcastNotFound) {
			broadcast = &entity.RequestBroadcast{
				RequestID:     requestID,
				TotalEligible: len(eligible),
				PublishedAt:   time.Now(),
			}
			if createErr := notificationRepo.CreateBroadcast(ctx, broadcast); createErr != nil {
				return errors.Wrap(createErr, "failed to create broadcast record")
			}
		} else if findErr != nil {
			return errors.Wrap(findErr, "failed to find broadcast record")
		}

		inserted, upsertErr := notificationRepo.UpsertRecommenderNotifications(ctx, buildRecommenderNotifications(request, eligible))
		if upsertErr != nil {
			return errors.Wrap(upsertErr, "failed to upsert recommender notifications")
		}

		result = &usecase.BroadcastResult{
			BroadcastID:   broadcast.ID,
			TotalEligible: len(eligible),
			InAppCreated:  int(inserted),
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute broadcast transaction", slog.Any("requestID", requestID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute broadcast transaction")
	}

	// Connected recommenders get a live ping on top of the inbox entry.
	if srv.streamPublisher != nil {
		ping := &service.Ping{
			ID:    request.ID,
			Type:  string(entity.NotificationTypeNearbyRequest),
			Title: fmt.Sprintf("Someone near you is craving %s", request.FoodType),
			Body:  fmt.Sprintf("You have %d minutes to chime in.", request.ResponseWindowMinutes),
			// Held back until the response window closes, so a connected
			// recommender sees it exactly when the collection period ends.
			ShowAt: request.ExpiresAt,
		}
		for _, profile := range eligible {
			// DND suppresses the live ping only; the inbox entry above and the
			// offline channels still go out.
			if profile.DoNotDisturb {
				continue
			}
			srv.streamPublisher.PublishPing(profile.UserID, ping)
		}
	}

	event := buildBroadcastEvent(ctx, request, result.BroadcastID, eligible)
	result.PushTargets = len(event.PushUserIDs)
	result.EmailTargets = len(event.EmailUserIDs)
	result.SMSTargets = len(event.SMSUserIDs)

	// No channel recipients means nothing for the worker to do.
	if result.PushTargets+result.EmailTargets+result.SMSTargets > 0 {
		if err := srv.eventPublisher.PublishBroadcastEvent(ctx, event); err != nil {
			srv.log(ctx).Error("Failed to publish broadcast event", slog.Any("requestID", requestID), slog.Any("error", err))

			return nil, errors.Wrap(err, "failed to publish broadcast event")
		}
	}

	srv.log(ctx).Info("Broadcast complete",
		slog.Any("requestID", requestID),
		slog.Int("eligible", result.TotalEligible),
		slog.Int("inAppCreated", result.InAppCreated),
		slog.Int("pushTargets", result.PushTargets),
		slog.Int("emailTargets", result.EmailTargets),
		slog.Int("smsTargets", result.SMSTargets))

	return result, nil
}

// buildRecommenderNotifications creates the in-app rows for a broadcast pass.
func buildRecommenderNotifications(request *entity.FoodRequest, eligible []*entity.Profile) []*entity.RecommenderNotification {
	title := fmt.Sprintf("Someone near you is craving %s", request.FoodType)
	body := fmt.Sprintf("Know a great spot for %s in %s? You have %d minutes to chime in.",
		request.FoodType, request.City, request.ResponseWindowMinutes)

	notifications := make([]*entity.RecommenderNotification, 0, len(eligible))
	for _, profile := range eligible {
		notifications = append(notifications, &entity.RecommenderNotification{
			RecommenderID: profile.UserID,
			RequestID:     request.ID,
			Type:          entity.NotificationTypeNearbyRequest,
			Title:         title,
			Body:          body,
		})
	}

	return notifications
}

// buildBroadcastEvent splits the eligible set into per-channel recipient lists
// so the worker never re-runs matching.
func buildBroadcastEvent(ctx context.Context, request *entity.FoodRequest, broadcastID uuid.UUID, eligible []*entity.Profile) *service.RequestBroadcastEvent {
	event := &service.RequestBroadcastEvent{
		RequestID:   request.ID.String(),
		BroadcastID: broadcastID.String(),
		TraceID:     deliverycontext.GetRequestIDFromContext(ctx),
		RequesterID: request.RequesterID.String(),
		FoodType:    request.FoodType,
		City:        request.City,
		State:       request.State,
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
		Urgency:     string(request.Urgency()),
	}

	for _, profile := range eligible {
		id := profile.UserID.String()
		if matching.WantsChannel(profile, entity.ChannelPush) {
			event.PushUserIDs = append(event.PushUserIDs, id)
		}
		if matching.WantsChannel(profile, entity.ChannelEmail) {
			event.EmailUserIDs = append(event.EmailUserIDs, id)
		}
		if matching.WantsChannel(profile, entity.ChannelSMS) {
			event.SMSUserIDs = append(event.SMSUserIDs, id)
		}
	}

	return event
}
