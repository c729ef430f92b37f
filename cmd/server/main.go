/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the receivables-engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and environment configuration
  2. Initialize SQLite store
  3. Create API handler with the configured pacing policy
  4. Start the background alert scheduler
  5. Start server with graceful shutdown

CONFIGURATION (environment, see config package):
  PORT                    HTTP server port (default: 8080)
  DB_PATH                 SQLite database path (default: ./data/receivables.db)
                          Use ":memory:" for an in-memory database
  CORS_ORIGINS            Comma-separated allowed origins
  MINIMUM_MONTHLY_CENTS   Minimum monthly payment pace (default: 50000)
  PAYOFF_WINDOW_DAYS      Days before the event the balance is due (default: 10)
  ALERT_INTERVAL          Alert sweep interval (default: 1h)
  ALERTS_ENABLED          Set to false to disable the sweep

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the alert scheduler
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Background alerts
  - config: Environment loading
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/festeja/receivables-engine/api"
	"github.com/festeja/receivables-engine/config"
	"github.com/festeja/receivables-engine/logging"
	"github.com/festeja/receivables-engine/receivables"
	"github.com/festeja/receivables-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logging.Default(logging.ComponentServer)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	pacing := receivables.PacingPolicy{
		MinimumMonthlyCents: cfg.MinimumMonthlyCents,
		PayoffWindowDays:    cfg.PayoffWindowDays,
	}

	handler := api.NewHandler(store)
	handler.Pacing = pacing

	scheduler := api.NewAlertScheduler(store, pacing, log.WithComponent(logging.ComponentScheduler))
	scheduler.CheckInterval = cfg.AlertInterval
	scheduler.Enabled = cfg.AlertsEnabled
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", "http://localhost:"+cfg.Port, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
