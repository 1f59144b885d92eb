package main

import (
	"fmt"
	"os"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/di"
	"github.com/aristath/rebalancer/pkg/logger"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
)

// loadConfig reads the environment configuration shared by every subcommand.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level := *logLevel
	if os.Getenv("LOG_LEVEL") != "" {
		level = cfg.LogLevel
	}

	log := logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})
	return cfg, log, nil
}

// openContainer wires the application for a one-shot command.
func openContainer(cfg *config.Config, log zerolog.Logger) (*di.Container, error) {
	container, err := di.Wire(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return container, nil
}

// printMarkdown renders md for the terminal. raw skips rendering.
func printMarkdown(md string, raw bool) {
	if raw {
		fmt.Print(md)
		return
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Print(md)
		return
	}

	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
