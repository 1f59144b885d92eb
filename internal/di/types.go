/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to handlers for access to services.
 */
package di

import (
	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/modules/history"
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
)

// Container holds all application dependencies
type Container struct {
	// Databases (nil when run history is disabled)
	HistoryDB *database.DB

	// Repositories
	HistoryRepo *history.Repository // nil when run history is disabled

	// Services
	SolverAdapter      *solver.Adapter
	RebalancingService *rebalancing.Service
}

// Close releases the databases held by the container
func (c *Container) Close() error {
	if c == nil || c.HistoryDB == nil {
		return nil
	}
	return c.HistoryDB.Close()
}
