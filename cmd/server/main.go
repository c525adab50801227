package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/spark-tracker/video-ingestion-go/internal/config"
	"github.com/spark-tracker/video-ingestion-go/internal/db"
	"github.com/spark-tracker/video-ingestion-go/internal/handler"
	"github.com/spark-tracker/video-ingestion-go/internal/metrics"
	"github.com/spark-tracker/video-ingestion-go/internal/middleware"
	"github.com/spark-tracker/video-ingestion-go/internal/repository"
	"github.com/spark-tracker/video-ingestion-go/internal/service"
	"github.com/spark-tracker/video-ingestion-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close(pool)

	logger.Log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	recordRepo := repository.NewRecordRepository(pool)

	// Eventing is optional: an empty RabbitMQ host disables the publisher.
	var publisher *service.MessagePublisher
	if cfg.RabbitMQ.Host != "" {
		publisher, err = service.NewMessagePublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		logger.Log.Info("RabbitMQ host not configured, eventing disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	var eventPublisher service.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	ingestionService := service.NewIngestionService(recordRepo, eventPublisher, collector)
	recordService := service.NewRecordService(recordRepo)

	recordHandler := handler.NewRecordHandler(ingestionService, recordService, cfg.Upload.MaxFileSize)
	healthHandler := handler.NewHealthHandler(pool, brokerHealth(publisher))
	auth := middleware.NewAPIKeyAuth(cfg.Auth.Keys)

	router := handler.NewRouter(recordHandler, healthHandler, auth, registry)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Log.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}

// brokerHealth avoids handing the health handler a typed nil.
func brokerHealth(publisher *service.MessagePublisher) handler.BrokerHealth {
	if publisher == nil {
		return nil
	}
	return publisher
}
