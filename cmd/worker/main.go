package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/pkg/cache"
	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/database"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/pkg/telemetry"
	"github.com/ghuser/contractflow/pkg/workflows"
	contractsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	contractworkflows "github.com/ghuser/contractflow/services/contract/infrastructure/workflows"
)

// sweepInterval is how often expired locks are cleared when Temporal is disabled.
const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Metrics:  tel.Workflow,
	}

	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, cfg.TemporalTaskQueue, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient
	}

	contracts := contractsvcs.New(appConfig).Contract

	if err := registerSubscribers(ctx, appConfig, cache.NewContractCache(redisClient)); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if appConfig.TemporalClient != nil {
		w := appConfig.TemporalClient.NewWorker()
		contractworkflows.Register(w, contracts)
		if err := w.Start(); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer w.Stop()
		log.Info("temporal worker started", "task_queue", appConfig.TemporalClient.TaskQueue)
	} else {
		go runLockSweeper(ctx, contracts, log)
	}

	<-ctx.Done()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("shutting down worker...")
}

// lockSweeper is the part of the contract service the sweeper drives.
type lockSweeper interface {
	SweepExpiredLocks(ctx context.Context) (int, error)
}

// runLockSweeper clears expired locks every sweepInterval until ctx is
// cancelled. With Temporal enabled each lock gets its own expiry workflow instead.
func runLockSweeper(ctx context.Context, s lockSweeper, log logger.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("lock sweeper shutting down")
			return
		case <-ticker.C:
			n, err := s.SweepExpiredLocks(ctx)
			if err != nil {
				log.ErrorContext(ctx, "lock sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.InfoContext(ctx, "expired locks cleared", "count", n)
			}
		}
	}
}
