// Package main is the entry point for the rebalancer HTTP daemon.
//
// Startup sequence:
// 1. Load configuration from environment variables (.env file supported)
// 2. Initialize logging
// 3. Wire dependencies via the DI container (history database, solver, services)
// 4. Start the history maintenance scheduler
// 5. Serve the HTTP API until SIGINT or SIGTERM, then shut down gracefully
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/di"
	"github.com/aristath/rebalancer/internal/server"
	"github.com/aristath/rebalancer/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("engine", cfg.Solver.Engine).
		Dur("solver_timeout", cfg.Solver.Timeout).
		Str("rounding", string(cfg.Rounding)).
		Msg("Starting rebalancer")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	sched, err := di.RegisterJobs(container, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped with error")
		return
	}

	log.Info().Msg("Server stopped")
}
