package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/rebalancer/internal/database"
	"github.com/rs/zerolog"
)

// walFrameWarning is the WAL size, in frames, above which a checkpoint is logged as a warning
const walFrameWarning = 1000

// CheckWALCheckpointJob checkpoints the history database WAL and verifies integrity
type CheckWALCheckpointJob struct {
	log zerolog.Logger
	db  *database.DB
}

// NewCheckWALCheckpointJob creates a new CheckWALCheckpointJob
func NewCheckWALCheckpointJob(db *database.DB, log zerolog.Logger) *CheckWALCheckpointJob {
	return &CheckWALCheckpointJob{
		log: log.With().Str("job", "check_wal_checkpoint").Logger(),
		db:  db,
	}
}

// Name returns the job name
func (j *CheckWALCheckpointJob) Name() string {
	return "check_wal_checkpoint"
}

// Run executes the checkpoint job
func (j *CheckWALCheckpointJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, log, checkpointed int
	err := j.db.Conn().QueryRowContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)").Scan(&busy, &log, &checkpointed)
	if err != nil {
		return fmt.Errorf("failed to checkpoint %s: %w", j.db.Name(), err)
	}

	if busy != 0 || log > walFrameWarning {
		j.log.Warn().
			Str("database", j.db.Name()).
			Int("busy", busy).
			Int("wal_frames", log).
			Int("checkpointed", checkpointed).
			Msg("WAL checkpoint incomplete")
	} else {
		j.log.Debug().
			Str("database", j.db.Name()).
			Int("wal_frames", log).
			Msg("WAL checkpoint status OK")
	}

	if err := j.db.HealthCheck(ctx); err != nil {
		return err
	}

	return nil
}
