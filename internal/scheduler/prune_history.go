package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HistoryPruner deletes old runs. *history.Repository satisfies it.
type HistoryPruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// PruneHistoryJob enforces the run history retention period
type PruneHistoryJob struct {
	log       zerolog.Logger
	pruner    HistoryPruner
	retention time.Duration
	now       func() time.Time
}

// NewPruneHistoryJob creates a job that deletes runs older than retention
func NewPruneHistoryJob(pruner HistoryPruner, retention time.Duration, log zerolog.Logger) *PruneHistoryJob {
	return &PruneHistoryJob{
		log:       log.With().Str("job", "prune_history").Logger(),
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *PruneHistoryJob) Name() string {
	return "prune_history"
}

// Run executes the prune job
func (j *PruneHistoryJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	j.log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("History retention applied")

	return nil
}
