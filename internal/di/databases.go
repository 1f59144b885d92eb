// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens history.db and applies its schema.
// Nothing is opened when run history is disabled.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if !cfg.History {
		log.Info().Msg("Run history disabled, skipping history database")
		return container, nil
	}

	// history.db - Audit trail of every optimization run
	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryPath(),
		Profile: database.ProfileLedger,
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	if err := historyDB.Migrate(); err != nil {
		historyDB.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}
	container.HistoryDB = historyDB

	log.Info().Str("path", historyDB.Path()).Msg("History database initialized")

	return container, nil
}
