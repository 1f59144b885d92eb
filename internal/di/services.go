package di

import (
	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/modules/history"
	"github.com/aristath/rebalancer/internal/modules/optimization/simplex"
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories backed by the container's databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.HistoryDB == nil {
		return nil
	}
	container.HistoryRepo = history.NewRepository(container.HistoryDB.Conn(), log)
	return nil
}

// InitializeServices registers the solver engines and builds the rebalancing service
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	simplex.Register(cfg.Solver.Tolerance)

	known := false
	for _, name := range solver.Engines() {
		if name == cfg.Solver.Engine {
			known = true
			break
		}
	}
	if !known {
		// The adapter would report SOLVER_UNAVAILABLE on every solve; warn once at startup
		log.Warn().
			Str("engine", cfg.Solver.Engine).
			Strs("available", solver.Engines()).
			Msg("Configured solver engine is not registered")
	}

	container.SolverAdapter = solver.NewAdapter(solver.Config{
		Engine:  cfg.Solver.Engine,
		Timeout: cfg.Solver.Timeout,
	}, log)

	// Avoid handing the service a typed-nil recorder
	var recorder rebalancing.HistoryRecorder
	if container.HistoryRepo != nil {
		recorder = container.HistoryRepo
	}

	rounding := cfg.Rounding
	if rounding == "" {
		rounding = rebalancing.RoundTruncate
	}
	container.RebalancingService = rebalancing.NewService(container.SolverAdapter, rounding, recorder, log)

	return nil
}
