package main

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api"
	"github.com/billforge/billforge/internal/api/cron"
	v1 "github.com/billforge/billforge/internal/api/v1"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/pubsub"
	pubsubMemory "github.com/billforge/billforge/internal/pubsub/memory"
	"github.com/billforge/billforge/internal/repository"
	"github.com/billforge/billforge/internal/scheduler"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/storage"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
	"github.com/billforge/billforge/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// The whole application runs in UTC
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// File storage
			storage.NewService,

			// Event publisher
			providePubSub,
			providePublisher,
			publisher.NewEventPublisher,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewReceiptRepository,
			repository.NewCouponRepository,
			repository.NewModulePriceRepository,
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,

			// Services
			service.NewServiceParams,
			service.NewInvoiceService,
			service.NewReceiptService,
			service.NewCouponService,
			service.NewPricingService,
			service.NewModulePriceService,
			service.NewSubscriptionService,
			service.NewSweeperService,

			// Sweep scheduler
			scheduler.New,

			// HTTP layer
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startApp),
	)

	app.Run()
}

func providePubSub(logger *logger.Logger) pubsub.PubSub {
	return pubsubMemory.NewPubSub(logger)
}

func providePublisher(ps pubsub.PubSub) pubsub.Publisher {
	return ps
}

func provideHandlers(
	invoiceService service.InvoiceService,
	receiptService service.ReceiptService,
	couponService service.CouponService,
	pricingService service.PricingService,
	modulePriceService service.ModulePriceService,
	subscriptionService service.SubscriptionService,
	sweeperService service.SweeperService,
	logger *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(),
		Invoice:          v1.NewInvoiceHandler(invoiceService, logger),
		Receipt:          v1.NewReceiptHandler(receiptService, logger),
		Coupon:           v1.NewCouponHandler(couponService, logger),
		Pricing:          v1.NewPricingHandler(pricingService, logger),
		ModulePrice:      v1.NewModulePriceHandler(modulePriceService, logger),
		Subscription:     v1.NewSubscriptionHandler(subscriptionService, logger),
		SubscriptionCron: cron.NewSubscriptionCronHandler(sweeperService, logger),
	}
}

func startApp(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	sched *scheduler.Scheduler,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	if cfg.Postgres.AutoMigrate {
		if err := migrations.Up(cfg.Postgres.GetDSN()); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		log.Info("applied database migrations")
	}

	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startScheduler(lc, sched, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeSweeper:
		startScheduler(lc, sched, log)
	default:
		log.Fatalf("unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
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
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down API server")
			return nil
		},
	})
}

func startScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sched.Start()
		},
		OnStop: func(ctx context.Context) error {
			sched.Stop()
			return nil
		},
	})
}
