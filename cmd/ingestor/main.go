package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seanbearden/kalshi-analysis/internal/api"
	"github.com/seanbearden/kalshi-analysis/internal/config"
	"github.com/seanbearden/kalshi-analysis/internal/database"
	"github.com/seanbearden/kalshi-analysis/internal/gaps"
	"github.com/seanbearden/kalshi-analysis/internal/ingest"
	"github.com/seanbearden/kalshi-analysis/internal/listener"
	"github.com/seanbearden/kalshi-analysis/internal/poller"
	"github.com/seanbearden/kalshi-analysis/internal/retry"
	"github.com/seanbearden/kalshi-analysis/internal/store"
	"github.com/seanbearden/kalshi-analysis/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/ingestor.local.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingestor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.RestURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	snapshots := store.NewPostgres(pool, logger)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	logger.Info("database connected")

	// Create API client
	apiClient := api.NewClient(
		cfg.API.RestURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetryPolicy(retry.Policy{
			MaxAttempts: cfg.API.MaxRetries,
			BaseDelay:   cfg.API.RetryBackoff,
			MaxDelay:    cfg.API.Timeout,
		}),
	)

	// REST polling path
	restPoller := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		PageSize: cfg.Poller.PageSize,
		Timeout:  cfg.Poller.Timeout,
	}, apiClient, snapshots, logger)

	// WebSocket push path
	clientCfg := listener.ClientConfig{
		URL:          cfg.API.WSURL,
		APIKey:       cfg.API.APIKey,
		PingTimeout:  cfg.Listener.PingTimeout,
		WriteTimeout: cfg.Listener.WriteTimeout,
		BufferSize:   cfg.Listener.MessageBufferSize,
	}
	pushListener := listener.New(listener.Config{
		ConnectAttempts:  cfg.Listener.ConnectAttempts,
		ConnectBaseDelay: cfg.Listener.ConnectBaseDelay,
		ConnectMaxDelay:  cfg.Listener.ConnectMaxDelay,
		ReconnectWait:    cfg.Listener.ReconnectWait,
	}, func() listener.Client {
		return listener.NewClient(clientCfg, logger)
	}, snapshots, logger)

	// Gap-fill sweep. The public API has no fetch-by-sequence endpoint,
	// so gaps are detected and reported without a recovery source.
	filler := gaps.NewFiller(snapshots, nil, cfg.GapFill.MaxPerCycle, logger)

	// Health endpoint
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(pool, logger),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	orchestrator := ingest.New(ingest.Config{
		SweepSchedule: cfg.GapFill.SweepSchedule,
	}, restPoller, pushListener, filler, logger)

	logger.Info("ingestor running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	if err := orchestrator.Run(ctx); err != nil {
		logger.Error("ingestion pipeline failed", "error", err)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("ingestor stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Version    string                 `json:"version"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Version,
			Components: make(map[string]interface{}),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
