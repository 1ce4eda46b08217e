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
	"gorm.io/gorm/clause"
)

// notificationRepository implements the repository.NotificationRepository interface.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// CreateNotification persists a requester inbox entry.
func (repo *notificationRepository) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	notificationM := fromNotificationDomain(notification)

	if err := repo.db.WithContext(ctx).Create(notificationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create notification")
	}

	notification.ID = notificationM.ID
	notification.CreatedAt = notificationM.CreatedAt

	return nil
}

// FindNotificationsByUser retrieves a user's inbox, newest first.
func (repo *notificationRepository) FindNotificationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error) {
	var notificationModels []*model.NotificationModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notificationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find notifications by user")
	}

	notifications := make([]*entity.Notification, 0, len(notificationModels))
	for _, notificationM := range notificationModels {
		notifications = append(notifications, toNotificationDomain(notificationM))
	}

	return notifications, nil
}

// CountUnreadByUser counts a user's unread inbox entries.
func (repo *notificationRepository) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count unread notifications")
	}

	return count, nil
}

// MarkNotificationRead stamps a notification as read by its owner. The owner
// check is part of the WHERE clause so users cannot touch each other's inboxes.
func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", time.Now())

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark notification read")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

// UpsertRecommenderNotifications inserts recommender inbox entries, skipping
// rows that collide on (recommender, request, type) so repeat broadcasts stay
// idempotent. Returns how many rows were actually inserted.
func (repo *notificationRepository) UpsertRecommenderNotifications(ctx context.Context, notifications []*entity.RecommenderNotification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	notificationModels := make([]*model.RecommenderNotificationModel, 0, len(notifications))
	for _, notification := range notifications {
		notificationModels = append(notificationModels, fromRecommenderNotificationDomain(notification))
	}

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recommender_id"}, {Name: "request_id"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(&notificationModels)

	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to upsert recommender notifications")
	}

	return result.RowsAffected, nil
}

// FindRecommenderNotifications retrieves a recommender's inbox, newest first.
func (repo *notificationRepository) FindRecommenderNotifications(ctx context.Context, recommenderID uuid.UUID, limit, offset int) ([]*entity.RecommenderNotification, error) {
	var notificationModels []*model.RecommenderNotificationModel

	if err := repo.db.WithContext(ctx).
		Where("recommender_id = ?", recommenderID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notificationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find recommender notifications")
	}

	notifications := make([]*entity.RecommenderNotification, 0, len(notificationModels))
	for _, notificationM := range notificationModels {
		notifications = append(notifications, toRecommenderNotificationDomain(notificationM))
	}

	return notifications, nil
}

// MarkRecommenderNotificationRead stamps a recommender notification as read.
func (repo *notificationRepository) MarkRecommenderNotificationRead(ctx context.Context, recommenderID, notificationID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RecommenderNotificationModel{}).
		Where("id = ? AND recommender_id = ?", notificationID, recommenderID).
		Update("read_at", time.Now())

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark recommender notification read")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

// CreateBroadcast persists the fan-out record for a request.
func (repo *notificationRepository) CreateBroadcast(ctx context.Context, broadcast *entity.RequestBroadcast) error {
	broadcastM := fromBroadcastDomain(broadcast)

	if err := repo.db.WithContext(ctx).Create(broadcastM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("broadcast already recorded for request")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create broadcast")
	}

	broadcast.ID = broadcastM.ID
	broadcast.CreatedAt = broadcastM.CreatedAt
	broadcast.UpdatedAt = broadcastM.UpdatedAt

	return nil
}

// FindBroadcastByRequest retrieves the broadcast record for a request.
func (repo *notificationRepository) FindBroadcastByRequest(ctx context.Context, requestID uuid.UUID) (*entity.RequestBroadcast, error) {
	var broadcastM model.RequestBroadcastModel

	if err := repo.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&broadcastM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBroadcastNotFound
		}

		return nil, errors.Wrap(err, "failed to find broadcast by request")
	}

	return toBroadcastDomain(&broadcastM), nil
}

// UpdateBroadcastTotals updates the sent and failed counters for a broadcast.
func (repo *notificationRepository) UpdateBroadcastTotals(ctx context.Context, id uuid.UUID, totalSent, totalFailed int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RequestBroadcastModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_sent":   totalSent,
			"total_failed": totalFailed,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update broadcast totals")
	}

	if result.RowsAffected == 0 {
		return repository.ErrBroadcastNotFound
	}

	return nil
}

// BatchCreateDeliveries persists per-channel delivery log entries.
func (repo *notificationRepository) BatchCreateDeliveries(ctx context.Context, deliveries []*entity.NotificationDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	deliveryModels := make([]*model.NotificationDeliveryModel, 0, len(deliveries))
	for _, delivery := range deliveries {
		deliveryModels = append(deliveryModels, fromDeliveryDomain(delivery))
	}

	if err := repo.db.WithContext(ctx).Create(&deliveryModels).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create delivery log entries")
	}

	return nil
}

// --- Mapper Functions ---

func toNotificationDomain(data *model.NotificationModel) *entity.Notification {
	if data == nil {
		return nil
	}

	return &entity.Notification{
		ID:        data.ID,
		UserID:    data.UserID,
		Type:      data.Type,
		Title:     data.Title,
		Body:      data.Body,
		RequestID: data.RequestID,
		ReadAt:    data.ReadAt,
		CreatedAt: data.CreatedAt,
	}
}

func fromNotificationDomain(data *entity.Notification) *model.NotificationModel {
	if data == nil {
		return nil
	}

	return &model.NotificationModel{
		ID:        data.ID,
		UserID:    data.UserID,
		Type:      data.Type,
		Title:     data.Title,
		Body:      data.Body,
		RequestID: data.RequestID,
		ReadAt:    data.ReadAt,
		CreatedAt: data.CreatedAt,
	}
}

func toRecommenderNotificationDomain(data *model.RecommenderNotificationModel) *entity.RecommenderNotification {
	if data == nil {
		return nil
	}

	return &entity.RecommenderNotification{
		ID:            data.ID,
		RecommenderID: data.RecommenderID,
		RequestID:     data.RequestID,
		Type:          data.Type,
		Title:         data.Title,
		Body:          data.Body,
		ReadAt:        data.ReadAt,
		CreatedAt:     data.CreatedAt,
	}
}

func fromRecommenderNotificationDomain(data *entity.RecommenderNotification) *model.RecommenderNotificationModel {
	if data == nil {
		return nil
	}

	return &model.RecommenderNotificationModel{
		ID:            data.ID,
		RecommenderID: data.RecommenderID,
		RequestID:     data.RequestID,
		Type:          data.Type,
		Title:         data.Title,
		Body:          data.Body,
		ReadAt:        data.ReadAt,
		CreatedAt:     data.CreatedAt,
	}
}

func toBroadcastDomain(data *model.RequestBroadcastModel) *entity.RequestBroadcast {
	if data == nil {
		return nil
	}

	return &entity.RequestBroadcast{
		ID:            data.ID,
		RequestID:     data.RequestID,
		TotalEligible: data.TotalEligible,
		TotalSent:     data.TotalSent,
		TotalFailed:   data.TotalFailed,
		PublishedAt:   data.PublishedAt,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func fromBroadcastDomain(data *entity.RequestBroadcast) *model.RequestBroadcastModel {
	if data == nil {
		return nil
	}

	return &model.RequestBroadcastModel{
		ID:            data.ID,
		RequestID:     data.RequestID,
		TotalEligible: data.TotalEligible,
		TotalSent:     data.TotalSent,
		TotalFailed:   data.TotalFailed,
		PublishedAt:   data.PublishedAt,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func fromDeliveryDomain(data *entity.NotificationDelivery) *model.NotificationDeliveryModel {
	if data == nil {
		return nil
	}

	return &model.NotificationDeliveryModel{
		ID:           data.ID,
		BroadcastID:  data.BroadcastID,
		RecipientID:  data.RecipientID,
		Channel:      string(data.Channel),
		Status:       data.Status,
		ErrorMessage: data.ErrorMessage,
		SentAt:       data.SentAt,
	}
}
