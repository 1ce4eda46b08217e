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

// reminderRepository implements the repository.ReminderRepository interface.
type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository is the constructor for reminderRepository.
func NewReminderRepository(db *gorm.DB) repository.ReminderRepository {
	return &reminderRepository{
		db: db,
	}
}

// CreateReminder schedules a visit reminder.
func (repo *reminderRepository) CreateReminder(ctx context.Context, reminder *entity.VisitReminder) error {
	reminderM := fromReminderDomain(reminder)

	if err := repo.db.WithContext(ctx).Create(reminderM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrRecommendationNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create visit reminder")
	}

	reminder.ID = reminderM.ID
	reminder.CreatedAt = reminderM.CreatedAt

	return nil
}

// FindDueReminders retrieves unsent reminders scheduled at or before now.
func (repo *reminderRepository) FindDueReminders(ctx context.Context, now time.Time, limit int) ([]*entity.VisitReminder, error) {
	var reminderModels []*model.VisitReminderModel

	if err := repo.db.WithContext(ctx).
		Where("sent = ? AND scheduled_for <= ?", false, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&reminderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find due reminders")
	}

	reminders := make([]*entity.VisitReminder, 0, len(reminderModels))
	for _, reminderM := range reminderModels {
		reminders = append(reminders, toReminderDomain(reminderM))
	}

	return reminders, nil
}

// FindDueRemindersByUser retrieves one user's unsent due reminders.
func (repo *reminderRepository) FindDueRemindersByUser(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*entity.VisitReminder, error) {
	var reminderModels []*model.VisitReminderModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND sent = ? AND scheduled_for <= ?", userID, false, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&reminderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find due reminders by user")
	}

	reminders := make([]*entity.VisitReminder, 0, len(reminderModels))
	for _, reminderM := range reminderModels {
		reminders = append(reminders, toReminderDomain(reminderM))
	}

	return reminders, nil
}

// MarkRemindersSent flags the given reminders as sent.
func (repo *reminderRepository) MarkRemindersSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.VisitReminderModel{}).
		Where("id IN ?", ids).
		Update("sent", true).Error; err != nil {
		return errors.Wrap(err, "failed to mark reminders sent")
	}

	return nil
}

// --- Mapper Functions ---

func toReminderDomain(data *model.VisitReminderModel) *entity.VisitReminder {
	if data == nil {
		return nil
	}

	return &entity.VisitReminder{
		ID:               data.ID,
		UserID:           data.UserID,
		RecommendationID: data.RecommendationID,
		RestaurantName:   data.RestaurantName,
		FoodType:         data.FoodType,
		ScheduledFor:     data.ScheduledFor,
		Sent:             data.Sent,
		CreatedAt:        data.CreatedAt,
	}
}

func fromReminderDomain(data *entity.VisitReminder) *model.VisitReminderModel {
	if data == nil {
		return nil
	}

	return &model.VisitReminderModel{
		ID:               data.ID,
		UserID:           data.UserID,
		RecommendationID: data.RecommendationID,
		RestaurantName:   data.RestaurantName,
		FoodType:         data.FoodType,
		ScheduledFor:     data.ScheduledFor,
		Sent:             data.Sent,
		CreatedAt:        data.CreatedAt,
	}
}
