package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultReminderSweepLimit = 200

// inboxService implements the InboxUsecase interface.
type inboxService struct {
	txManager        repository.TransactionManager
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewInboxService is the constructor for inboxService.
func NewInboxService(
	txManager repository.TransactionManager,
	notificationRepo repository.NotificationRepository,
	logger *slog.Logger,
) usecase.InboxUsecase {
	return &inboxService{
		txManager:        txManager,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (srv *inboxService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetInbox pages through a requester's notifications, newest first.
func (srv *inboxService) GetInbox(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error) {
	limit, offset = normalizePage(limit, offset)

	notifications, err := srv.notificationRepo.FindNotificationsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	return notifications, nil
}

// CountUnread counts a user's unread notifications.
func (srv *inboxService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := srv.notificationRepo.CountUnreadByUser(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count unread notifications")
	}

	return count, nil
}

// MarkRead stamps a notification as read by its owner.
func (srv *inboxService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := srv.notificationRepo.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return errors.Wrap(domainerrors.ErrNotFound, "notification not found")
		}

		return errors.Wrap(err, "failed to mark notification read")
	}

	return nil
}

// GetRecommenderInbox pages through a recommender's nearby-request entries.
func (srv *inboxService) GetRecommenderInbox(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.RecommenderNotification, error) {
	limit, offset = normalizePage(limit, offset)

	notifications, err := srv.notificationRepo.FindRecommenderNotifications(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recommender notifications")
	}

	return notifications, nil
}

// MarkRecommenderRead stamps a recommender notification as read.
func (srv *inboxService) MarkRecommenderRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := srv.notificationRepo.MarkRecommenderNotificationRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return errors.Wrap(domainerrors.ErrNotFound, "notification not found")
		}

		return errors.Wrap(err, "failed to mark recommender notification read")
	}

	return nil
}

// ProcessDueReminders turns due visit reminders into inbox notifications.
// Reminders are marked sent in the same transaction as the inbox writes so a
// crash between the two cannot double-remind.
func (srv *inboxService) ProcessDueReminders(ctx context.Context, limit int) (int, error) {
	return srv.processReminders(ctx, limit, func(ctx context.Context, reminderRepo repository.ReminderRepository, limit int) ([]*entity.VisitReminder, error) {
		return reminderRepo.FindDueReminders(ctx, time.Now(), limit)
	})
}

// ProcessUserReminders processes only the caller's own due reminders.
func (srv *inboxService) ProcessUserReminders(ctx context.Context, userID uuid.UUID, limit int) (int, error) {
	return srv.processReminders(ctx, limit, func(ctx context.Context, reminderRepo repository.ReminderRepository, limit int) ([]*entity.VisitReminder, error) {
		return reminderRepo.FindDueRemindersByUser(ctx, userID, time.Now(), limit)
	})
}

func (srv *inboxService) processReminders(
	ctx context.Context,
	limit int,
	findDue func(context.Context, repository.ReminderRepository, int) ([]*entity.VisitReminder, error),
) (int, error) {
	if limit <= 0 {
		limit = defaultReminderSweepLimit
	}

	processed := 0
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reminderRepo := repoFactory.ReminderRepo()
		notificationRepo := repoFactory.NotificationRepo()

		due, findErr := findDue(ctx, reminderRepo, limit)
		if findErr != nil {
			return errors.Wrap(findErr, "failed to find due reminders")
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(due))
		for _, reminder := range due {
			notification := &entity.Notification{
				UserID: reminder.UserID,
				Type:   entity.NotificationTypeVisitReminder,
				Title:  fmt.Sprintf("Did you make it to %s?", reminder.RestaurantName),
				Body:   fmt.Sprintf("You saved %s for %s. Let your recommender know how it went.", reminder.RestaurantName, reminder.FoodType),
			}
			if createErr := notificationRepo.CreateNotification(ctx, notification); createErr != nil {
				return errors.Wrap(createErr, "failed to create reminder notification")
			}
			ids = append(ids, reminder.ID)
		}

		if markErr := reminderRepo.MarkRemindersSent(ctx, ids); markErr != nil {
			return errors.Wrap(markErr, "failed to mark reminders sent")
		}
		processed = len(ids)

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to process due reminders", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to process due reminders")
	}

	if processed > 0 {
		srv.log(ctx).Info("Processed visit reminders", slog.Int("count", processed))
	}

	return processed, nil
}
