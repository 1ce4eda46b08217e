package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cravlr/config"
	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	// Firebase batch size limit
	firebaseBatchSize = 500

	// defaultEmailBatchSize stays under typical provider recipient limits.
	defaultEmailBatchSize = 90

	smsBatchSize = 100
)

// dispatchService implements the DispatchUsecase interface. It runs inside the
// worker and turns one broadcast event into actual push, email, and SMS sends.
type dispatchService struct {
	deviceRepo       repository.DeviceRepository
	profileRepo      repository.ProfileRepository
	notificationRepo repository.NotificationRepository
	pushService      service.PushService
	emailSender      service.EmailSender
	smsSender        service.SMSSender
	emailBatchSize   int
	logger           *slog.Logger
}

// DispatchServiceParams holds dependencies for dispatchService, injected by Fx.
type DispatchServiceParams struct {
	fx.In

	DeviceRepo       repository.DeviceRepository
	ProfileRepo      repository.ProfileRepository
	NotificationRepo repository.NotificationRepository
	PushService      service.PushService
	EmailSender      service.EmailSender
	SMSSender        service.SMSSender
	Config           *config.Config
	Logger           *slog.Logger
}

// NewDispatchService is the constructor for dispatchService.
func NewDispatchService(params DispatchServiceParams) usecase.DispatchUsecase {
	emailBatchSize := defaultEmailBatchSize
	if params.Config != nil && params.Config.Email != nil && params.Config.Email.BatchSize > 0 {
		emailBatchSize = params.Config.Email.BatchSize
	}

	return &dispatchService{
		deviceRepo:       params.DeviceRepo,
		profileRepo:      params.ProfileRepo,
		notificationRepo: params.NotificationRepo,
		pushService:      params.PushService,
		emailSender:      params.EmailSender,
		smsSender:        params.SMSSender,
		emailBatchSize:   emailBatchSize,
		logger:           params.Logger,
	}
}

func (srv *dispatchService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// DispatchBroadcast delivers one broadcast event across all channels.
//
// Infrastructure errors (recipient lookups, delivery log writes) are returned
// so the push endpoint can ask for a retry; individual send failures are
// logged, counted, and rolled into the broadcast totals instead.
func (srv *dispatchService) DispatchBroadcast(ctx context.Context, event *service.RequestBroadcastEvent) (*usecase.DispatchResult, error) {
	broadcastID, err := uuid.Parse(event.BroadcastID)
	if err != nil {
		return nil, errors.Wrap(err, "event has no valid broadcast id")
	}

	srv.log(ctx).Info("Dispatching broadcast",
		slog.String("broadcastID", event.BroadcastID),
		slog.Int("pushTargets", len(event.PushUserIDs)),
		slog.Int("emailTargets", len(event.EmailUserIDs)),
		slog.Int("smsTargets", len(event.SMSUserIDs)))

	title := fmt.Sprintf("Someone near you is craving %s", event.FoodType)
	body := fmt.Sprintf("Know a great spot for %s in %s? Open Cravlr to recommend one.", event.FoodType, event.City)

	result := &usecase.DispatchResult{}
	var deliveries []*entity.NotificationDelivery

	pushDeliveries, err := srv.dispatchPush(ctx, event, broadcastID, title, body, result)
	if err != nil {
		return nil, err
	}
	deliveries = append(deliveries, pushDeliveries...)

	emailDeliveries, err := srv.dispatchEmail(ctx, event, broadcastID, title, body, result)
	if err != nil {
		return nil, err
	}
	deliveries = append(deliveries, emailDeliveries...)

	smsDeliveries, err := srv.dispatchSMS(ctx, event, broadcastID, body, result)
	if err != nil {
		return nil, err
	}
	deliveries = append(deliveries, smsDeliveries...)

	if len(deliveries) > 0 {
		if err := srv.notificationRepo.BatchCreateDeliveries(ctx, deliveries); err != nil {
			return nil, errors.Wrap(err, "failed to log deliveries")
		}
	}

	if err := srv.notificationRepo.UpdateBroadcastTotals(ctx, broadcastID, result.TotalSent(), result.TotalFailed()); err != nil {
		return nil, errors.Wrap(err, "failed to update broadcast totals")
	}

	srv.log(ctx).Info("Broadcast dispatched",
		slog.String("broadcastID", event.BroadcastID),
		slog.Int("sent", result.TotalSent()),
		slog.Int("failed", result.TotalFailed()))

	return result, nil
}

// dispatchPush sends FCM notifications in batches, cleaning up devices whose
// tokens came back invalid.
func (srv *dispatchService) dispatchPush(
	ctx context.Context,
	event *service.RequestBroadcastEvent,
	broadcastID uuid.UUID,
	title, body string,
	result *usecase.DispatchResult,
) ([]*entity.NotificationDelivery, error) {
	userIDs := parseUserIDs(event.PushUserIDs)
	if len(userIDs) == 0 {
		return nil, nil
	}

	devices, err := srv.deviceRepo.FindActiveDevicesForUsers(ctx, userIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load devices for push dispatch")
	}
	if len(devices) == 0 {
		return nil, nil
	}

	tokens := make([]string, 0, len(devices))
	deviceByToken := make(map[string]*entity.UserDevice, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.FCMToken)
		deviceByToken[device.FCMToken] = device
	}

	data := map[string]string{
		"type":       entity.NotificationTypeNearbyRequest,
		"request_id": event.RequestID,
		"urgency":    event.Urgency,
		"city":       event.City,
	}

	var deliveries []*entity.NotificationDelivery
	var invalidTokens []string

	for start := 0; start < len(tokens); start += firebaseBatchSize {
		end := min(start+firebaseBatchSize, len(tokens))
		batch := tokens[start:end]

		_, _, batchInvalid, sendErr := srv.pushService.SendBatchNotification(ctx, batch, title, body, data)
		if sendErr != nil {
			// Whole batch failed; count it and move on to the next batch.
			srv.log(ctx).Warn("Push batch failed", slog.Any("error", sendErr), slog.Int("size", len(batch)))
			result.PushFailed += len(batch)
			deliveries = append(deliveries, batchDeliveries(broadcastID, entity.ChannelPush, batch, deviceByToken, nil, sendErr.Error())...)

			continue
		}

		invalid := make(map[string]struct{}, len(batchInvalid))
		for _, token := range batchInvalid {
			invalid[token] = struct{}{}
		}
		invalidTokens = append(invalidTokens, batchInvalid...)

		result.PushSent += len(batch) - len(batchInvalid)
		result.PushFailed += len(batchInvalid)
		deliveries = append(deliveries, batchDeliveries(broadcastID, entity.ChannelPush, batch, deviceByToken, invalid, "invalid or unregistered token")...)
	}

	// Invalid tokens never recover; drop the devices so future fan-outs skip them.
	for _, token := range invalidTokens {
		device, ok := deviceByToken[token]
		if !ok {
			continue
		}
		if err := srv.deviceRepo.DeleteDevice(ctx, device.ID); err != nil {
			srv.log(ctx).Warn("Failed to delete invalid device", slog.Any("deviceID", device.ID), slog.Any("error", err))
		}
	}

	return deliveries, nil
}

func (srv *dispatchService) dispatchEmail(
	ctx context.Context,
	event *service.RequestBroadcastEvent,
	broadcastID uuid.UUID,
	subject, body string,
	result *usecase.DispatchResult,
) ([]*entity.NotificationDelivery, error) {
	userIDs := parseUserIDs(event.EmailUserIDs)
	if len(userIDs) == 0 {
		return nil, nil
	}

	profiles, err := srv.profileRepo.FindProfilesByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load profiles for email dispatch")
	}

	recipients := make([]string, 0, len(profiles))
	userByEmail := make(map[string]uuid.UUID, len(profiles))
	for _, profile := range profiles {
		if profile.Email == "" {
			continue
		}
		recipients = append(recipients, profile.Email)
		userByEmail[profile.Email] = profile.UserID
	}

	htmlBody := fmt.Sprintf("<p>%s</p><p>Request urgency: %s.</p>", body, event.Urgency)

	var deliveries []*entity.NotificationDelivery
	for start := 0; start < len(recipients); start += srv.emailBatchSize {
		end := min(start+srv.emailBatchSize, len(recipients))
		batch := recipients[start:end]

		sent, failedCount, failedRecipients, sendErr := srv.emailSender.SendBatch(ctx, batch, subject, htmlBody)
		if sendErr != nil || failedCount > 0 {
			srv.log(ctx).Warn("Email batch had failures",
				slog.Any("error", sendErr), slog.Int("failed", failedCount), slog.Int("size", len(batch)))
		}
		result.EmailSent += sent
		result.EmailFailed += failedCount

		errMsg := "email delivery failed"
		if sendErr != nil {
			errMsg = sendErr.Error()
		}

		failedSet := make(map[string]struct{}, len(failedRecipients))
		for _, recipient := range failedRecipients {
			failedSet[recipient] = struct{}{}
		}

		for _, email := range batch {
			status, msg := "sent", ""
			if _, bad := failedSet[email]; bad {
				status, msg = "failed", errMsg
			}

			deliveries = append(deliveries, &entity.NotificationDelivery{
				BroadcastID:  broadcastID,
				RecipientID:  userByEmail[email],
				Channel:      entity.ChannelEmail,
				Status:       status,
				ErrorMessage: msg,
				SentAt:       time.Now(),
			})
		}
	}

	return deliveries, nil
}

func (srv *dispatchService) dispatchSMS(
	ctx context.Context,
	event *service.RequestBroadcastEvent,
	broadcastID uuid.UUID,
	message string,
	result *usecase.DispatchResult,
) ([]*entity.NotificationDelivery, error) {
	userIDs := parseUserIDs(event.SMSUserIDs)
	if len(userIDs) == 0 {
		return nil, nil
	}

	profiles, err := srv.profileRepo.FindProfilesByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load profiles for sms dispatch")
	}

	numbers := make([]string, 0, len(profiles))
	userByNumber := make(map[string]uuid.UUID, len(profiles))
	for _, profile := range profiles {
		if profile.PhoneNumber == "" {
			continue
		}
		numbers = append(numbers, profile.PhoneNumber)
		userByNumber[profile.PhoneNumber] = profile.UserID
	}

	var deliveries []*entity.NotificationDelivery
	for start := 0; start < len(numbers); start += smsBatchSize {
		end := min(start+smsBatchSize, len(numbers))
		batch := numbers[start:end]

		sent, failedCount, failedNumbers, sendErr := srv.smsSender.SendBatch(ctx, batch, message)
		if sendErr != nil || failedCount > 0 {
			srv.log(ctx).Warn("SMS batch had failures",
				slog.Any("error", sendErr), slog.Int("failed", failedCount), slog.Int("size", len(batch)))
		}
		result.SMSSent += sent
		result.SMSFailed += failedCount

		errMsg := "sms delivery failed"
		if sendErr != nil {
			errMsg = sendErr.Error()
		}

		failedSet := make(map[string]struct{}, len(failedNumbers))
		for _, number := range failedNumbers {
			failedSet[number] = struct{}{}
		}

		for _, number := range batch {
			status, msg := "sent", ""
			if _, bad := failedSet[number]; bad {
				status, msg = "failed", errMsg
			}

			deliveries = append(deliveries, &entity.NotificationDelivery{
				BroadcastID:  broadcastID,
				RecipientID:  userByNumber[number],
				Channel:      entity.ChannelSMS,
				Status:       status,
				ErrorMessage: msg,
				SentAt:       time.Now(),
			})
		}
	}

	return deliveries, nil
}

// batchDeliveries builds push delivery rows for one batch. failed marks which
// tokens go down as failures; a nil set with a non-empty message fails the
// whole batch.
func batchDeliveries(
	broadcastID uuid.UUID,
	channel entity.Channel,
	tokens []string,
	deviceByToken map[string]*entity.UserDevice,
	failed map[string]struct{},
	errMsg string,
) []*entity.NotificationDelivery {
	deliveries := make([]*entity.NotificationDelivery, 0, len(tokens))
	for _, token := range tokens {
		device, ok := deviceByToken[token]
		if !ok {
			continue
		}

		status, msg := "sent", ""
		if failed == nil {
			status, msg = "failed", errMsg
		} else if _, bad := failed[token]; bad {
			status, msg = "failed", errMsg
		}

		deliveries = append(deliveries, &entity.NotificationDelivery{
			BroadcastID:  broadcastID,
			RecipientID:  device.UserID,
			Channel:      channel,
			Status:       status,
			ErrorMessage: msg,
			SentAt:       time.Now(),
		})
	}

	return deliveries
}

// parseUserIDs drops malformed IDs instead of failing the dispatch.
func parseUserIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}
