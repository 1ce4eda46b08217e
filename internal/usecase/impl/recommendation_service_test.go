package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recommendationFixture struct {
	svc                usecase.RecommendationUsecase
	requestRepo        *fakeRequestRepo
	recommendationRepo *fakeRecommendationRepo
	notificationRepo   *fakeNotificationRepo
	reminderRepo       *fakeReminderRepo
}

func newRecommendationFixture() *recommendationFixture {
	f := &recommendationFixture{
		requestRepo:        &fakeRequestRepo{},
		recommendationRepo: &fakeRecommendationRepo{},
		notificationRepo:   &fakeNotificationRepo{},
		reminderRepo:       &fakeReminderRepo{},
	}
	txManager := &fakeTxManager{factory: &fakeRepoFactory{
		requestRepo:        f.requestRepo,
		recommendationRepo: f.recommendationRepo,
		notificationRepo:   f.notificationRepo,
		reminderRepo:       f.reminderRepo,
	}}
	f.svc = NewRecommendationService(RecommendationServiceParams{
		TxManager:          txManager,
		RecommendationRepo: f.recommendationRepo,
		Logger:             testLogger(),
	})

	return f
}

func (f *recommendationFixture) withRequest(request *entity.FoodRequest) {
	f.requestRepo.findByID = func(id uuid.UUID) (*entity.FoodRequest, error) {
		if id == request.ID {
			return request, nil
		}

		return nil, repository.ErrRequestNotFound
	}
}

func TestSubmitRecommendation_NotifiesRequester(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	f.withRequest(request)

	recommenderID := uuid.New()
	rec, err := f.svc.SubmitRecommendation(context.Background(), recommenderID, &usecase.SubmitRecommendationInput{
		RequestID:      request.ID,
		RestaurantName: "Veracruz All Natural",
		Notes:          "get the migas taco",
	})
	require.NoError(t, err)
	assert.Equal(t, recommenderID, rec.RecommenderID)

	require.Len(t, f.notificationRepo.notifications, 1)
	notification := f.notificationRepo.notifications[0]
	assert.Equal(t, request.RequesterID, notification.UserID)
	assert.Equal(t, entity.NotificationTypeNewRecommendation, notification.Type)
	assert.Contains(t, notification.Body, "Veracruz All Natural")
}

func TestSubmitRecommendation_ClosedRequest(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	request.Status = entity.RequestStatusClosed
	f.withRequest(request)

	_, err := f.svc.SubmitRecommendation(context.Background(), uuid.New(), &usecase.SubmitRecommendationInput{
		RequestID:      request.ID,
		RestaurantName: "Anywhere",
	})
	assert.ErrorIs(t, err, domainerrors.ErrRequestClosed)

	// An elapsed response window closes the request even while status is active.
	expired := openRequest(uuid.New())
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	f.withRequest(expired)

	_, err = f.svc.SubmitRecommendation(context.Background(), uuid.New(), &usecase.SubmitRecommendationInput{
		RequestID:      expired.ID,
		RestaurantName: "Anywhere",
	})
	assert.ErrorIs(t, err, domainerrors.ErrRequestClosed)
}

func TestSubmitRecommendation_OwnRequest(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	f.withRequest(request)

	_, err := f.svc.SubmitRecommendation(context.Background(), request.RequesterID, &usecase.SubmitRecommendationInput{
		RequestID:      request.ID,
		RestaurantName: "My Own Pick",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestSubmitRecommendation_LimitReached(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	f.withRequest(request)
	f.recommendationRepo.count = func(uuid.UUID) (int64, error) {
		return defaultMaxRecommendationsPerRequest, nil
	}

	_, err := f.svc.SubmitRecommendation(context.Background(), uuid.New(), &usecase.SubmitRecommendationInput{
		RequestID:      request.ID,
		RestaurantName: "One Too Many",
	})
	assert.ErrorIs(t, err, domainerrors.ErrRecommendationLimitReached)
	assert.Empty(t, f.recommendationRepo.created)
}

func TestSubmitRecommendation_OnePerRecommender(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	f.withRequest(request)
	f.recommendationRepo.createErr = repository.ErrRecommendationExists

	_, err := f.svc.SubmitRecommendation(context.Background(), uuid.New(), &usecase.SubmitRecommendationInput{
		RequestID:      request.ID,
		RestaurantName: "Same Spot Again",
	})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateRecommendation)
}

func TestSubmitRecommendation_Validation(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	f.withRequest(request)

	_, err := f.svc.SubmitRecommendation(context.Background(), uuid.New(), &usecase.SubmitRecommendationInput{
		RequestID: request.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = f.svc.SubmitRecommendation(context.Background(), uuid.New(), &usecase.SubmitRecommendationInput{
		RequestID:      request.ID,
		RestaurantName: "Wordy",
		Notes:          strings.Repeat("x", maxStoredNoteLength+1),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestDeclineRequest_Idempotent(t *testing.T) {
	f := newRecommendationFixture()
	recommenderID := uuid.New()
	requestID := uuid.New()

	require.NoError(t, f.svc.DeclineRequest(context.Background(), recommenderID, requestID))
	assert.Len(t, f.recommendationRepo.declines, 1)

	f.recommendationRepo.hasDeclined = true
	require.NoError(t, f.svc.DeclineRequest(context.Background(), recommenderID, requestID))
	assert.Len(t, f.recommendationRepo.declines, 1)
}

func TestSaveRecommendation_SchedulesReminder(t *testing.T) {
	f := newRecommendationFixture()
	request := openRequest(uuid.New())
	f.withRequest(request)

	rec := &entity.Recommendation{
		ID:             uuid.New(),
		RequestID:      request.ID,
		RecommenderID:  uuid.New(),
		RestaurantName: "Franklin Barbecue",
	}
	f.recommendationRepo.findByID = func(id uuid.UUID) (*entity.Recommendation, error) {
		if id == rec.ID {
			return rec, nil
		}

		return nil, repository.ErrRecommendationNotFound
	}

	// Only the requester may save.
	err := f.svc.SaveRecommendation(context.Background(), uuid.New(), rec.ID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	before := time.Now().Add(defaultReminderDelay)
	require.NoError(t, f.svc.SaveRecommendation(context.Background(), request.RequesterID, rec.ID, nil))
	require.Len(t, f.reminderRepo.reminders, 1)

	reminder := f.reminderRepo.reminders[0]
	assert.Equal(t, request.RequesterID, reminder.UserID)
	assert.Equal(t, "Franklin Barbecue", reminder.RestaurantName)
	assert.Equal(t, request.FoodType, reminder.FoodType)
	assert.WithinDuration(t, before, reminder.ScheduledFor, time.Minute)

	remindAt := time.Now().Add(2 * time.Hour)
	require.NoError(t, f.svc.SaveRecommendation(context.Background(), request.RequesterID, rec.ID, &usecase.SaveRecommendationInput{RemindAt: &remindAt}))
	require.Len(t, f.reminderRepo.reminders, 2)
	assert.Equal(t, remindAt, f.reminderRepo.reminders[1].ScheduledFor)
}
