// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the history database (always absolute)
	LogLevel  string
	LogPretty bool
	Port      int
	DevMode   bool
	Solver    SolverConfig
	Rounding  rebalancing.Rounding
	History   bool // Record every optimization run in history.db

	// Maintenance of history.db, run by the daemon only
	HistoryRetentionDays int    // 0 keeps runs forever
	MaintenanceSchedule  string // cron expression with a seconds field
}

// SolverConfig selects and tunes the LP engine
type SolverConfig struct {
	Engine    string
	Timeout   time.Duration
	Tolerance float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("REBALANCER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	rounding, err := rebalancing.ParseRounding(getEnv("QUANTITY_ROUNDING", string(rebalancing.RoundTruncate)))
	if err != nil {
		return nil, fmt.Errorf("invalid QUANTITY_ROUNDING: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		Port:      getEnvAsInt("PORT", 8001),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		Solver: SolverConfig{
			Engine:    getEnv("SOLVER_ENGINE", "simplex"),
			Timeout:   time.Duration(getEnvAsInt("SOLVER_TIMEOUT_SECONDS", 30)) * time.Second,
			Tolerance: getEnvAsFloat("SOLVER_TOLERANCE", 1e-10),
		},
		Rounding:             rounding,
		History:              getEnvAsBool("HISTORY_ENABLED", true),
		HistoryRetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 90),
		MaintenanceSchedule:  getEnv("MAINTENANCE_SCHEDULE", "0 30 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Only create the data directory once the rest of the config is known to be good
	if cfg.History {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Solver.Engine == "" {
		return fmt.Errorf("SOLVER_ENGINE must not be empty")
	}
	if c.Solver.Timeout < 0 {
		return fmt.Errorf("invalid SOLVER_TIMEOUT_SECONDS %v", c.Solver.Timeout)
	}
	if c.Solver.Tolerance < 0 {
		return fmt.Errorf("invalid SOLVER_TOLERANCE %g", c.Solver.Tolerance)
	}
	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("invalid HISTORY_RETENTION_DAYS %d", c.HistoryRetentionDays)
	}
	return nil
}

// HistoryPath is the location of the run history database
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// HistoryRetention is the age after which runs are pruned, zero when pruning is off
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
