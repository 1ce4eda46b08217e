package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cravlr/config"
	"cravlr/internal/delivery"
	"cravlr/internal/delivery/worker"
	"cravlr/internal/delivery/worker/handler"
	"cravlr/internal/domain/service"
	"cravlr/internal/infra/email"
	logs "cravlr/internal/infra/log"
	"cravlr/internal/infra/notification"
	"cravlr/internal/infra/persistence/postgres"
	"cravlr/internal/infra/pubsub"
	"cravlr/internal/infra/sms"
	"cravlr/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewProfileRepository,
			postgres.NewDeviceRepository,
			postgres.NewRequestRepository,
			postgres.NewNotificationRepository,
			postgres.NewRefreshTokenRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newFirebaseService,
			email.NewSMTPSender,
			sms.NewOneSignalSender,
			pubsub.NewEventPublisher,
		),
	)
}

// newFirebaseService creates the FCM push service from config.
func newFirebaseService(ctx context.Context, cfg *config.Config) (service.PushService, error) {
	if cfg.Firebase == nil {
		return nil, fmt.Errorf("firebase configuration is required for the notifier")
	}

	svc, err := notification.NewFirebaseService(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase service: %w", err)
	}

	return svc, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDispatchService,
			impl.NewBroadcastService,
			impl.NewRequestService,
			impl.NewInboxService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewDispatchHandler,
			handler.NewSweepHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					fmt.Fprintln(os.Stderr, "failed to shutdown gracefully:", shutdownErr)
					os.Exit(1)
				}
			}
		}()
	}
}
