package impl

import (
	"context"
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

const defaultResponseWindowMinutes = 60

// requestService implements the RequestUsecase interface.
type requestService struct {
	requestRepo      repository.RequestRepository
	broadcastUsecase usecase.BroadcastUsecase
	defaultWindow    int
	logger           *slog.Logger
}

// RequestServiceParams holds dependencies for requestService, injected by Fx.
type RequestServiceParams struct {
	fx.In

	RequestRepo      repository.RequestRepository
	BroadcastUsecase usecase.BroadcastUsecase
	Config           *config.Config
	Logger           *slog.Logger
}

// NewRequestService is the constructor for requestService.
func NewRequestService(params RequestServiceParams) usecase.RequestUsecase {
	defaultWindow := defaultResponseWindowMinutes
	if params.Config != nil && params.Config.Requests != nil && params.Config.Requests.DefaultResponseWindowMinutes > 0 {
		defaultWindow = params.Config.Requests.DefaultResponseWindowMinutes
	}

	return &requestService{
		requestRepo:      params.RequestRepo,
		broadcastUsecase: params.BroadcastUsecase,
		defaultWindow:    defaultWindow,
		logger:           params.Logger,
	}
}

func (srv *requestService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateRequest opens a new food request and fans it out to recommenders.
func (srv *requestService) CreateRequest(ctx context.Context, requesterID uuid.UUID, input *usecase.CreateRequestInput) (*entity.FoodRequest, error) {
	srv.log(ctx).Info("Creating food request", slog.Any("requesterID", requesterID), slog.String("foodType", input.FoodType))

	if input.FoodType == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "food type is required")
	}
	if input.City == "" && (input.Latitude == nil || input.Longitude == nil) {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "a city or coordinates are required")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "latitude and longitude must be provided together")
	}

	window := input.ResponseWindowMinutes
	if window <= 0 {
		window = srv.defaultWindow
	}

	now := time.Now()
	request := &entity.FoodRequest{
		RequesterID:           requesterID,
		FoodType:              input.FoodType,
		City:                  input.City,
		State:                 input.State,
		Latitude:              input.Latitude,
		Longitude:             input.Longitude,
		ResponseWindowMinutes: window,
		Status:                entity.RequestStatusActive,
		ExpiresAt:             now.Add(time.Duration(window) * time.Minute),
	}

	if err := srv.requestRepo.CreateRequest(ctx, request); err != nil {
		srv.log(ctx).Error("Failed to create food request", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create food request")
	}

	// The request exists regardless of whether fan-out succeeds; a failed
	// broadcast can be retried from the request detail view.
	if _, err := srv.broadcastUsecase.BroadcastRequest(ctx, request.ID); err != nil {
		srv.log(ctx).Warn("Broadcast failed for new request", slog.Any("requestID", request.ID), slog.Any("error", err))
	}

	return request, nil
}

// GetRequest retrieves a single request.
func (srv *requestService) GetRequest(ctx context.Context, id uuid.UUID) (*entity.FoodRequest, error) {
	request, err := srv.requestRepo.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRequestNotFound, "request not found")
		}

		return nil, errors.Wrap(err, "failed to find request")
	}

	return request, nil
}

// ListActiveRequests pages through open requests, newest first.
func (srv *requestService) ListActiveRequests(ctx context.Context, limit, offset int) (*usecase.RequestListOutput, error) {
	limit, offset = normalizePage(limit, offset)

	// Fetch one extra row to learn whether another page exists.
	requests, err := srv.requestRepo.FindActiveRequests(ctx, limit+1, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active requests")
	}

	return pageRequests(requests, limit), nil
}

// ListMyRequests pages through a requester's own requests, newest first.
func (srv *requestService) ListMyRequests(ctx context.Context, requesterID uuid.UUID, limit, offset int) (*usecase.RequestListOutput, error) {
	limit, offset = normalizePage(limit, offset)

	requests, err := srv.requestRepo.FindRequestsByRequester(ctx, requesterID, limit+1, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list requests by requester")
	}

	return pageRequests(requests, limit), nil
}

// CloseRequest closes an open request on behalf of its requester.
func (srv *requestService) CloseRequest(ctx context.Context, requesterID, requestID uuid.UUID) error {
	srv.log(ctx).Info("Closing food request", slog.Any("requestID", requestID))

	request, err := srv.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return errors.Wrap(domainerrors.ErrRequestNotFound, "request not found")
		}

		return errors.Wrap(err, "failed to find request")
	}

	if request.RequesterID != requesterID {
		return errors.Wrap(domainerrors.ErrForbidden, "request does not belong to user")
	}
	if request.Status != entity.RequestStatusActive {
		return errors.Wrap(domainerrors.ErrRequestClosed, "request is not open")
	}

	closedAt := time.Now()
	if err := srv.requestRepo.UpdateRequestStatus(ctx, requestID, entity.RequestStatusClosed, &closedAt); err != nil {
		return errors.Wrap(err, "failed to close request")
	}

	return nil
}

// ExpireDueRequests transitions requests whose response window elapsed.
func (srv *requestService) ExpireDueRequests(ctx context.Context) (int64, error) {
	expired, err := srv.requestRepo.ExpireDueRequests(ctx, time.Now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to expire due requests")
	}

	if expired > 0 {
		srv.log(ctx).Info("Expired due requests", slog.Int64("count", expired))
	}

	return expired, nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func pageRequests(requests []*entity.FoodRequest, limit int) *usecase.RequestListOutput {
	hasMore := len(requests) > limit
	if hasMore {
		requests = requests[:limit]
	}

	return &usecase.RequestListOutput{Requests: requests, HasMore: hasMore}
}
