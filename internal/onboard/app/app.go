package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaultsuite/onboard/internal/onboard/directory"
	httpapi "github.com/vaultsuite/onboard/internal/onboard/http"
	"github.com/vaultsuite/onboard/internal/onboard/queue"
	"github.com/vaultsuite/onboard/internal/onboard/service"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/store/drivers/sqlite"
	"github.com/vaultsuite/onboard/internal/onboard/telemetry"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the onboarding service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	sender     directory.Sender
	registry   *prometheus.Registry
	telemetry  telemetry.Emitter
	dispatcher *queue.KafkaDispatcher

	// Pipeline workers
	processor   *service.Processor
	scheduler   *service.RetryScheduler
	consumer    *queue.Consumer
	deadLetters *queue.DeadLetterRecorder

	// Services
	resendService *service.ResendService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.AuthSecret == "" {
		return nil, errors.New("ONBOARD_AUTH_SECRET is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "onboard-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initTelemetry()
	app.initDirectory()
	app.initPipeline()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.consumer.Start()
	app.deadLetters.Start()
	app.scheduler.Start()

	app.logger.Info("onboard service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the workers, the HTTP server and the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down onboard service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop intake before the workers so nothing new lands mid-shutdown.
	if err := app.dispatcher.Close(); err != nil {
		app.logger.Error("error closing dispatcher", "error", err)
	}
	app.scheduler.Stop()
	app.consumer.Stop()
	app.deadLetters.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("onboard service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initTelemetry() {
	app.registry = prometheus.NewRegistry()
	app.telemetry = telemetry.NewPrometheus(app.registry, app.logger)
}

// initDirectory picks the invitation sender. Without Graph credentials the
// service still runs, but every delivery fails with a descriptive error.
func (app *Application) initDirectory() {
	if app.cfg.GraphClientID == "" || app.cfg.GraphTokenURL == "" {
		app.logger.Warn("no directory credentials configured, deliveries will fail")
		app.sender = directory.Unconfigured{}
		return
	}

	app.sender = directory.NewGraphClient(directory.GraphConfig{
		BaseURL:      app.cfg.GraphBaseURL,
		TokenURL:     app.cfg.GraphTokenURL,
		ClientID:     app.cfg.GraphClientID,
		ClientSecret: app.cfg.GraphClientSecret,
		Scopes:       app.cfg.GraphScopes,
	})
}

// initPipeline wires the processor and the three background workers.
func (app *Application) initPipeline() {
	app.processor = &service.Processor{
		Store:     app.db,
		Sender:    app.sender,
		Telemetry: app.telemetry,
	}

	backoff := service.NewBackoffTable(app.cfg.RetryBackoffUnit)
	app.scheduler = service.NewRetryScheduler(
		app.db,
		app.processor,
		app.telemetry,
		app.logger,
		app.cfg.RetryInterval,
		backoff,
	)

	app.resendService = &service.ResendService{
		Store:       app.db,
		Processor:   app.processor,
		MaxAttempts: backoff.MaxAttempts(),
	}

	app.dispatcher = queue.NewKafkaDispatcher(app.cfg.KafkaBrokers, app.cfg.KafkaTopic, app.telemetry)

	queueCfg := queue.ConsumerConfig{
		Brokers:       app.cfg.KafkaBrokers,
		Topic:         app.cfg.KafkaTopic,
		GroupID:       app.cfg.KafkaGroupID,
		MaxDeliveries: app.cfg.MaxDeliveries,
		DedupTTL:      app.cfg.DedupTTL,
	}
	app.consumer = queue.NewConsumer(queueCfg, app.db, app.processor, app.telemetry, app.logger)
	app.deadLetters = queue.NewDeadLetterRecorder(queueCfg, app.db, app.telemetry, app.logger)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		[]byte(app.cfg.AuthSecret),
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Dispatcher = app.dispatcher
	router.QueuePinger = app.dispatcher
	router.ResendService = app.resendService
	router.Gatherer = app.registry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
