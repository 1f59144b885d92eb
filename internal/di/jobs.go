// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs registers the history maintenance jobs with a new scheduler.
// Returns nil when run history is disabled, since there is nothing to maintain.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*scheduler.Scheduler, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if container.HistoryDB == nil || container.HistoryRepo == nil {
		return nil, nil
	}

	sched := scheduler.New(log)

	walJob := scheduler.NewCheckWALCheckpointJob(container.HistoryDB, log)
	if err := sched.AddJob(cfg.MaintenanceSchedule, walJob); err != nil {
		return nil, err
	}

	if retention := cfg.HistoryRetention(); retention > 0 {
		pruneJob := scheduler.NewPruneHistoryJob(container.HistoryRepo, retention, log)
		if err := sched.AddJob(cfg.MaintenanceSchedule, pruneJob); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("jobs", sched.Len()).
		Str("schedule", cfg.MaintenanceSchedule).
		Msg("Maintenance jobs registered")

	return sched, nil
}
