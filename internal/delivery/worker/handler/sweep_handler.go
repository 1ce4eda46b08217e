package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"cravlr/config"
	"cravlr/internal/domain/repository"
	"cravlr/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// headerCronSecret authenticates the scheduler that calls the sweep endpoint.
const headerCronSecret = "X-Cron-Secret"

// reminderSweepLimit bounds how many due reminders one sweep pass converts.
const reminderSweepLimit = 200

// SweepHandler runs the periodic maintenance pass: expiring overdue food
// requests, converting due visit reminders into inbox notifications, and
// pruning expired refresh tokens.
type SweepHandler struct {
	secret           string
	logger           *slog.Logger
	requestUC        usecase.RequestUsecase
	inboxUC          usecase.InboxUsecase
	refreshTokenRepo repository.RefreshTokenRepository
}

// SweepHandlerParams holds dependencies for the SweepHandler
type SweepHandlerParams struct {
	fx.In

	Config           *config.Config
	Logger           *slog.Logger
	RequestUC        usecase.RequestUsecase
	InboxUC          usecase.InboxUsecase
	RefreshTokenRepo repository.RefreshTokenRepository
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(params SweepHandlerParams) *SweepHandler {
	var secret string
	if params.Config.Cron != nil {
		secret = params.Config.Cron.Secret
	}

	return &SweepHandler{
		secret:           secret,
		logger:           params.Logger,
		requestUC:        params.RequestUC,
		inboxUC:          params.InboxUC,
		refreshTokenRepo: params.RefreshTokenRepo,
	}
}

// sweepResult reports what one sweep pass did.
type sweepResult struct {
	ExpiredRequests    int64 `json:"expired_requests"`
	ProcessedReminders int   `json:"processed_reminders"`
	PrunedTokens       int64 `json:"pruned_tokens"`
}

// HandleSweep runs the maintenance pass. Each stage is independent: a failed
// stage is logged and the rest still run, so one broken table never stalls
// the whole sweep.
func (h *SweepHandler) HandleSweep(c echo.Context) error {
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.Request().Header.Get(headerCronSecret)), []byte(h.secret)) != 1 {
		h.logger.Warn("[Worker] Sweep called with bad or missing cron secret")

		return c.NoContent(http.StatusUnauthorized)
	}

	ctx := c.Request().Context()
	result := sweepResult{}
	failures := 0

	expired, err := h.requestUC.ExpireDueRequests(ctx)
	if err != nil {
		h.logger.Error("[Worker] Failed to expire due requests", slog.Any("error", err))
		failures++
	} else {
		result.ExpiredRequests = expired
	}

	processed, err := h.inboxUC.ProcessDueReminders(ctx, reminderSweepLimit)
	if err != nil {
		h.logger.Error("[Worker] Failed to process due reminders", slog.Any("error", err))
		failures++
	} else {
		result.ProcessedReminders = processed
	}

	pruned, err := h.refreshTokenRepo.DeleteExpiredRefreshTokens(ctx, time.Now())
	if err != nil {
		h.logger.Error("[Worker] Failed to prune expired refresh tokens", slog.Any("error", err))
		failures++
	} else {
		result.PrunedTokens = pruned
	}

	h.logger.Info("[Worker] Sweep complete",
		slog.Int64("expired_requests", result.ExpiredRequests),
		slog.Int("processed_reminders", result.ProcessedReminders),
		slog.Int64("pruned_tokens", result.PrunedTokens),
		slog.Int("failures", failures),
	)

	if failures > 0 {
		return c.JSON(http.StatusInternalServerError, result)
	}

	return c.JSON(http.StatusOK, result)
}
