package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/config"
	"github.com/WailSalutem-Health-Care/intake-service/internal/db"
	"github.com/WailSalutem-Health-Care/intake-service/internal/genai"
	httpapi "github.com/WailSalutem-Health-Care/intake-service/internal/http"
	"github.com/WailSalutem-Health-Care/intake-service/internal/intake"
	"github.com/WailSalutem-Health-Care/intake-service/internal/logging"
	"github.com/WailSalutem-Health-Care/intake-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/intake-service/internal/telemetry"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, "intake-service")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Telemetry (traces + metrics); degrades to no-op when no collector.
	provider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
	}
	var metrics *telemetry.Metrics
	if provider != nil && provider.MeterProvider != nil {
		metrics, err = telemetry.InitMetrics()
		if err != nil {
			logger.Warn("custom metrics disabled", zap.Error(err))
		}
	}

	// Record store
	var store intake.StoreInterface
	switch cfg.Store.Driver {
	case "postgres":
		sqlDB, err := db.Connect()
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer sqlDB.Close()
		pgStore := intake.NewPostgresStore(sqlDB)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		store = pgStore
	default:
		store = intake.NewMemoryStore()
	}
	logger.Info("record store ready", zap.String("driver", cfg.Store.Driver))

	// Event publisher
	var publisher messaging.PublisherInterface = messaging.NoopPublisher{}
	if cfg.Messaging.Enabled {
		rabbitPublisher, err := messaging.NewPublisher(cfg.Messaging.URL, logger)
		if err != nil {
			logger.Warn("messaging disabled: could not connect to RabbitMQ", zap.Error(err))
		} else {
			publisher = rabbitPublisher
			defer rabbitPublisher.Close()
		}
	}

	generator := genai.NewGeminiClient(cfg.GenAI, logger)
	service := intake.NewService(store, generator, publisher, metrics, logger, cfg.Suggestions)
	handler := intake.NewHandler(service)
	router := httpapi.SetupRouter(handler, cfg.Server, metrics, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("intake-service listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	if provider != nil {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", zap.Error(err))
		}
	}
	logger.Info("stopped")
}
