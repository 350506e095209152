package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/api"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/cache"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/events"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/metrics"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository/postgres"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/SerenicuS/ai-hackathon-msme-ai/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Decision history is optional; run without it if Redis is down.
	decisionLog, err := cache.NewDecisionLog(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Decision history disabled")
		decisionLog = cache.NewNoopDecisionLog()
	}
	defer decisionLog.Close()

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Decision events disabled")
		publisher = events.NewNoopPublisher()
	}
	defer publisher.Close()

	m := metrics.New()

	// Initialize services
	inventoryService := service.NewInventoryService(
		postgres.NewLedgerRepository(db),
		postgres.NewSupplierRepository(db),
		cfg.Planner,
		service.WithDecisionLog(decisionLog),
		service.WithPublisher(publisher),
		service.WithMetrics(m),
	)

	router := api.NewRouter(&api.Services{
		InventoryService: inventoryService,
		Metrics:          m,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Float64("safety_buffer_kg", inventoryService.SafetyBufferKg()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
