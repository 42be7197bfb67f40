package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/contractflow/docs/swagger"
	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/pkg/auth"
	"github.com/ghuser/contractflow/pkg/blobstore"
	"github.com/ghuser/contractflow/pkg/cache"
	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/database"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/pkg/telemetry"
	"github.com/ghuser/contractflow/pkg/workflows"
	contractApi "github.com/ghuser/contractflow/services/contract/application/api"
	userApi "github.com/ghuser/contractflow/services/user/application/api"
)

// multipartOverhead is added to UPLOAD_MAX_BYTES for form fields and boundaries.
const multipartOverhead = 1 << 20

// @title					ContractFlow API
// @version				1.0
// @description			Back-office workflow for energy and telecom contracts: work queue, locks, status transitions and documents.
// @contact.name			API Support
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer tel.Shutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
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

	eventBus, err := events.NewEventBus(cfg, log, events.WithForwarder())
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)
	log.Info("session store initialized", "backend", "redis")

	appConfig := &app.Application{
		Config:       cfg,
		Db:           pool,
		Logger:       log,
		EventBus:     eventBus,
		Redis:        redisClient,
		SessionStore: sessionStore,
		Metrics:      tel.Workflow,
	}

	// Documents are unavailable without the storage box; everything else keeps working.
	files, err := blobstore.NewSFTPStore(cfg, log)
	if err != nil {
		log.Warn("sftp store unavailable, document uploads disabled", "error", err)
	} else {
		defer files.Close() //nolint:errcheck
		appConfig.BlobStore = files
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

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RouteBodyLimits: map[string]int64{
				"/api/upload-document": cfg.UploadMaxBytes + multipartOverhead,
			},
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	checks := healthChecks(appConfig)
	r.Get("/health", httpx.HealthHandler(checks...))
	r.Get("/metrics", tel.MetricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireActor(sessionStore, cfg.AuthHeaderFallback, log))
		if err := registerRoutes(r, appConfig, checks); err != nil {
			log.Error("failed to register routes", "error", err)
			os.Exit(1)
		}
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// healthChecks lists the dependencies probed by /health and /api/diagnostics.
func healthChecks(a *app.Application) []httpx.HealthCheck {
	checks := []httpx.HealthCheck{
		{Name: "database", Checker: a.Db},
		{Name: "redis", Checker: a.Redis},
		{Name: "event_bus", Checker: a.EventBus},
	}
	if a.BlobStore != nil {
		checks = append(checks, httpx.HealthCheck{Name: "file_store", Checker: a.BlobStore})
	}
	if a.TemporalClient != nil {
		checks = append(checks, httpx.HealthCheck{Name: "temporal", Checker: a.TemporalClient})
	}
	return checks
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application, checks []httpx.HealthCheck) error {
	contracts := contractApi.ContractRoutes(r, a)
	users, err := userApi.UserRoutes(r, a)
	if err != nil {
		return err
	}
	r.Get("/diagnostics", newDiagnosticsHandler(contracts.Contract, users.User, checks, a.Logger))
	return nil
}
