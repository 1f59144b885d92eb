package rebalancing

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/rebalancer/internal/modules/optimization/lp"
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Solver runs a linear model. *solver.Adapter satisfies it.
type Solver interface {
	Solve(ctx context.Context, model *lp.Model) solver.Result
}

// HistoryRecorder persists finished runs.
type HistoryRecorder interface {
	Record(ctx context.Context, req Request, out *Outcome) error
}

// Outcome is the structured result of one optimization. Plan is empty unless
// Status is OPTIMAL; Reason explains why.
type Outcome struct {
	RunID          string          `json:"run_id"`
	Status         solver.Status   `json:"status"`
	Engine         string          `json:"engine,omitempty"`
	Plan           Plan            `json:"plan"`
	ObjectiveValue float64         `json:"objective_value"`
	NetCashFlow    decimal.Decimal `json:"net_cash_flow"`  // raw solution
	PlanCashFlow   decimal.Decimal `json:"plan_cash_flow"` // after rounding
	Budget         float64         `json:"budget"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Optimal reports whether the outcome carries a plan.
func (o *Outcome) Optimal() bool {
	return o.Status == solver.StatusOptimal
}

// Service runs the build -> solve -> extract pipeline.
type Service struct {
	solver   Solver
	rounding Rounding
	history  HistoryRecorder // optional
	engine   string
	log      zerolog.Logger
}

// NewService creates a rebalancing service. history may be nil.
func NewService(s Solver, rounding Rounding, history HistoryRecorder, log zerolog.Logger) *Service {
	svc := &Service{
		solver:   s,
		rounding: rounding,
		history:  history,
		log:      log.With().Str("service", "rebalancing").Logger(),
	}
	if named, ok := s.(interface{ Engine() string }); ok {
		svc.engine = named.Engine()
	}
	return svc
}

// Optimize computes a transaction plan for req.
//
// A solve that ends in anything but OPTIMAL is not an error: the returned
// Outcome has an empty plan, the status and a reason, and the caller decides
// what to do. Errors are returned for invalid requests and history failures.
func (s *Service) Optimize(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model := BuildModel(req)
	s.log.Debug().
		Int("isins", len(model.ISINs)).
		Int("variables", model.LP.NumVariables()).
		Int("constraints", len(model.LP.Constraints)).
		Float64("budget", req.Budget).
		Msg("Built rebalance model")

	res := s.solver.Solve(ctx, model.LP)

	out := &Outcome{
		RunID:     uuid.New().String(),
		Status:    res.Status,
		Engine:    s.engine,
		Plan:      Plan{},
		Budget:    req.Budget,
		CreatedAt: time.Now().UTC(),
	}

	plan, err := ExtractPlan(model, res, s.rounding)
	if err != nil {
		out.Reason = err.Error()
		s.log.Warn().Stringer("status", res.Status).Err(res.Err).Msg("No rebalance plan produced")
	} else {
		out.Plan = plan
		out.ObjectiveValue = res.ObjectiveValue
		out.NetCashFlow = SolvedCashFlow(model, res)
		out.PlanCashFlow = PlanCashFlow(model, plan)
		s.log.Info().
			Int("trades", len(plan.Trades())).
			Float64("objective", res.ObjectiveValue).
			Str("net_cash_flow", out.NetCashFlow.StringFixed(2)).
			Msg("Rebalance plan computed")
	}

	if s.history != nil {
		if err := s.history.Record(ctx, req, out); err != nil {
			return out, fmt.Errorf("failed to record rebalance run: %w", err)
		}
	}

	return out, nil
}
