package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cravlr/config"
	"cravlr/internal/delivery"
	"cravlr/internal/delivery/http"
	"cravlr/internal/delivery/http/middleware"
	"cravlr/internal/delivery/http/router/handler"
	"cravlr/internal/delivery/stream"
	"cravlr/internal/domain/service"
	"cravlr/internal/infra/auth"
	"cravlr/internal/infra/auth/google"
	logs "cravlr/internal/infra/log"
	"cravlr/internal/infra/persistence/postgres"
	"cravlr/internal/infra/places"
	"cravlr/internal/infra/pubsub"
	"cravlr/internal/infra/qrcode"
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
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
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
			postgres.NewUserRepository,
			postgres.NewAuthRepository,
			postgres.NewRefreshTokenRepository,
			postgres.NewProfileRepository,
			postgres.NewDeviceRepository,
			postgres.NewRequestRepository,
			postgres.NewRecommendationRepository,
			postgres.NewNotificationRepository,
			postgres.NewReferralRepository,
			postgres.NewBusinessRepository,
			postgres.NewReminderRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			google.NewAuthService,
			qrcode.NewQRCodeService,
			places.NewPlaceService,
			pubsub.NewEventPublisher,
			stream.NewHub,
			func(hub *stream.Hub) service.StreamPublisher { return hub },
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewProfileService,
			impl.NewDeviceService,
			impl.NewRequestService,
			impl.NewRecommendationService,
			impl.NewResultService,
			impl.NewReferralService,
			impl.NewBusinessService,
			impl.NewBroadcastService,
			impl.NewInboxService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewProfileHandler,
			handler.NewDeviceHandler,
			handler.NewRequestHandler,
			handler.NewRecommendationHandler,
			handler.NewInboxHandler,
			handler.NewReferralHandler,
			handler.NewBusinessHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
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
