package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/api"
	"github.com/renderbase/renderbase/internal/api/cron"
	v1 "github.com/renderbase/renderbase/internal/api/v1"
	"github.com/renderbase/renderbase/internal/billing"
	"github.com/renderbase/renderbase/internal/cache"
	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/domain/provider"
	"github.com/renderbase/renderbase/internal/httpclient"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/postgres"
	"github.com/renderbase/renderbase/internal/repository"
	"github.com/renderbase/renderbase/internal/scheduler"
	"github.com/renderbase/renderbase/internal/sentry"
	"github.com/renderbase/renderbase/internal/service"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/renderbase/renderbase/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// The whole application runs in UTC
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.Initialize,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// HTTP client
			httpclient.NewDefaultClient,

			// Render providers
			provider.Initialize,

			// Billing webhooks
			billing.NewWebhookService,

			// Repositories
			repository.NewWalletRepository,
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewLedgerService,
			service.NewPlanService,
			service.NewSubscriptionService,
			service.NewCreditResetService,
			service.NewRenderJobService,
		),
	)

	// API and background work
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
			scheduler.NewCreditResetScheduler,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startScheduler,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	ledgerService service.LedgerService,
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	creditResetService service.CreditResetService,
	renderJobService service.RenderJobService,
	webhookService *billing.WebhookService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		Wallet:       v1.NewWalletHandler(ledgerService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, webhookService, logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		RenderJob:    v1.NewRenderJobHandler(renderJobService, logger),
		CreditReset:  cron.NewCreditResetHandler(creditResetService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startScheduler(lc fx.Lifecycle, s *scheduler.CreditResetScheduler) {
	s.RegisterHooks(lc)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db postgres.IClient,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
