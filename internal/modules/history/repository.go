// Package history stores finished rebalance runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("rebalance run not found")

// Run is a stored optimization: the outcome plus the request that produced it.
type Run struct {
	Outcome    rebalancing.Outcome `json:"outcome"`
	Request    rebalancing.Request `json:"request"`
	TradeCount int                 `json:"trade_count"`
}

// Summary is the list view of a run, without request and plan payloads.
type Summary struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	Status         solver.Status `json:"status"`
	Engine         string        `json:"engine"`
	Budget         float64       `json:"budget"`
	ObjectiveValue float64       `json:"objective_value"`
	NetCashFlow    string        `json:"net_cash_flow"`
	TradeCount     int           `json:"trade_count"`
	Reason         string        `json:"reason,omitempty"`
}

// Repository handles persistence of rebalance runs
// Database: history.db (rebalance_runs table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}
}

// Record implements rebalancing.HistoryRecorder.
func (r *Repository) Record(ctx context.Context, req rebalancing.Request, out *rebalancing.Outcome) error {
	request, err := msgpack.Marshal(&req)
	if err != nil {
		return fmt.Errorf("failed to encode request snapshot: %w", err)
	}
	plan, err := json.Marshal(out.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rebalance_runs
		(id, created_at, status, engine, budget, objective_value, net_cash_flow,
		 plan_cash_flow, trade_count, reason, request, plan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		out.RunID,
		out.CreatedAt.Unix(),
		out.Status.String(),
		out.Engine,
		out.Budget,
		out.ObjectiveValue,
		out.NetCashFlow.String(),
		out.PlanCashFlow.String(),
		len(out.Plan.Trades()),
		out.Reason,
		request,
		string(plan),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rebalance run: %w", err)
	}

	r.log.Debug().Str("run_id", out.RunID).Stringer("status", out.Status).Msg("Recorded rebalance run")
	return nil
}

// Get returns the full run with the given id.
func (r *Repository) Get(ctx context.Context, id string) (*Run, error) {
	var (
		run               Run
		status            string
		createdAt         int64
		netCash, planCash string
		request           []byte
		plan              string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, status, engine, budget, objective_value, net_cash_flow,
		       plan_cash_flow, trade_count, reason, request, plan
		FROM rebalance_runs
		WHERE id = ?
	`, id).Scan(
		&run.Outcome.RunID,
		&createdAt,
		&status,
		&run.Outcome.Engine,
		&run.Outcome.Budget,
		&run.Outcome.ObjectiveValue,
		&netCash,
		&planCash,
		&run.TradeCount,
		&run.Outcome.Reason,
		&request,
		&plan,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rebalance run: %w", err)
	}

	run.Outcome.CreatedAt = time.Unix(createdAt, 0).UTC()
	if err := run.Outcome.Status.UnmarshalText([]byte(status)); err != nil {
		return nil, err
	}
	if run.Outcome.NetCashFlow, err = decimal.NewFromString(netCash); err != nil {
		return nil, fmt.Errorf("failed to parse net cash flow: %w", err)
	}
	if run.Outcome.PlanCashFlow, err = decimal.NewFromString(planCash); err != nil {
		return nil, fmt.Errorf("failed to parse plan cash flow: %w", err)
	}
	if err := msgpack.Unmarshal(request, &run.Request); err != nil {
		return nil, fmt.Errorf("failed to decode request snapshot: %w", err)
	}
	run.Outcome.Plan = rebalancing.Plan{}
	if err := json.Unmarshal([]byte(plan), &run.Outcome.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	return &run, nil
}

// List returns the most recent runs first.
func (r *Repository) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, status, engine, budget, objective_value, net_cash_flow,
		       trade_count, reason
		FROM rebalance_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rebalance runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0, limit)
	for rows.Next() {
		var s Summary
		var createdAt int64
		var status string
		if err := rows.Scan(
			&s.ID,
			&createdAt,
			&status,
			&s.Engine,
			&s.Budget,
			&s.ObjectiveValue,
			&s.NetCashFlow,
			&s.TradeCount,
			&s.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rebalance run: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		if err := s.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rebalance runs: %w", err)
	}

	return summaries, nil
}

// Prune deletes runs created before the cutoff and reports how many were removed.
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rebalance_runs WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune rebalance runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rebalance runs: %w", err)
	}

	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Time("before", before).Msg("Pruned rebalance runs")
	}
	return deleted, nil
}
