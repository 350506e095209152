package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/drive"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/ingest"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/metrics"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository/postgres"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/SerenicuS/ai-hackathon-msme-ai/pkg/logger"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	ctx := context.Background()

	db, err := postgres.NewDB(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ledger := postgres.NewLedgerRepository(db)
	importer := ingest.NewImporter(ledger, cfg.Planner.ForecastWorkers)
	m := metrics.New()

	r := mux.NewRouter()
	r.Use(instrument(m))

	ingest.NewHandler(service.NewLedgerService(ledger), importer).RegisterRoutes(r)

	// Drive sync is only wired when a service account is configured.
	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
		}
		drive.NewHandler(driveService, importer, cfg.Drive.FolderID).RegisterRoutes(r)
	} else {
		logger.Log.Info().Msg("GOOGLE_DRIVE_CREDENTIALS_JSON not set, drive routes disabled")
	}

	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.IngestPort,
		Handler:      handlers.LoggingHandler(os.Stdout, handler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.IngestPort).Msg("Ingest server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start ingest server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Ingest server forced to shutdown")
	}
	logger.Log.Info().Msg("Ingest server exiting")
}

// instrument labels request metrics with the matched route template.
func instrument(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.WrapHandler(route, next).ServeHTTP(w, r)
		})
	}
}
