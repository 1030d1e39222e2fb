package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dayflow/internal/health"
	"github.com/felixgeelhaar/dayflow/internal/history"
	"github.com/felixgeelhaar/dayflow/internal/server"
	"github.com/felixgeelhaar/dayflow/internal/session"
	"github.com/felixgeelhaar/dayflow/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP capability server",
	Long: `Start an HTTP server exposing the schedule capabilities as JSON
endpoints, alongside Kubernetes-style health probes.

Capability endpoints (POST, JSON):
  /api/ai/generate-schedule
  /api/ai/add-task-to-schedule
  /api/ai/adjust-schedule-for-delay
  /api/ai/extract-tasks-from-transcript
  /api/ai/summarize-day
  /api/ai/get-current-time

Health probe endpoints:
  /health/live    - Liveness probe (process alive and responsive)
  /health/ready   - Readiness probe (ready to accept traffic)
  /health/startup - Startup probe (finished initialization)
  /healthz        - Backward-compatible readiness endpoint

The server drains connections gracefully on SIGTERM or SIGINT.

Example:
  # Start with the configured address (default :8080)
  dayflow serve

  # Override the listen address and the provider model
  dayflow serve --address :9090 --model claude-haiku-4-5-20251015`,
	RunE: runServe,
}

var (
	serveAddress         string
	serveModel           string
	serveShutdownTimeout time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Provider model (overrides config)")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 0, "Maximum time to wait for connections to drain (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}
	if serveModel != "" {
		cfg.Provider.Model = serveModel
	}
	logger := newLogger(cfg)

	client, transformer, err := newTransformer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	histStore, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = histStore.Close() }()

	info := version.GetInfo()
	pm := health.NewProbeManager(info.Version)
	pm.AddChecker(health.NewProviderChecker(client))
	pm.AddChecker(health.NewSessionStoreChecker(session.NewFileStore(cfg.Session.StatePath)))
	pm.AddChecker(health.NewHistoryChecker(histStore.Ping))

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if serveShutdownTimeout > 0 {
		shutdownTimeout = serveShutdownTimeout
	}

	srv := server.NewServer(transformer, pm, session.SystemClock{}, logger, server.Config{
		Address:         cfg.Server.Address,
		ShutdownTimeout: shutdownTimeout,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	fmt.Printf("dayflow %s\n", info.Version)
	fmt.Printf("Listening on: http://%s\n", cfg.Server.Address)
	fmt.Printf("Provider: %s (%s)\n\n", client.Info().Name, client.Info().Model)
	fmt.Printf("Press Ctrl+C to stop the server\n\n")

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}
