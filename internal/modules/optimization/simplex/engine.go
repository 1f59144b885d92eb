// Package simplex is the default LP engine, built on gonum's Simplex solver.
//
// gonum solves problems in standard form
//
//	minimize c'x  subject to  A x = b,  x >= 0
//
// so each session first rewrites the bounded, ranged model into that form.
// Variables nobody constrains and constraints nobody touches are presolved
// away because gonum rejects zero rows and zero columns. Equality rows implied
// by other rows are dropped too, since gonum also rejects a singular A.
package simplex

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aristath/rebalancer/internal/modules/optimization/lp"
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

// EngineName is the registry name of this engine.
const EngineName = "simplex"

// DefaultTolerance is the gonum Simplex tolerance used when none is configured.
const DefaultTolerance = 1e-10

// feasibilityTol bounds the slack accepted when a presolved row is checked.
const feasibilityTol = 1e-9

// Register installs the engine in the solver registry with the given tolerance.
func Register(tol float64) {
	solver.Register(EngineName, Factory(tol))
}

// Factory returns a solver.Factory producing simplex sessions.
func Factory(tol float64) solver.Factory {
	return func() (solver.Session, error) {
		if tol < 0 || math.IsNaN(tol) {
			return nil, fmt.Errorf("invalid simplex tolerance %g", tol)
		}
		if tol == 0 {
			tol = DefaultTolerance
		}
		return &session{tol: tol}, nil
	}
}

type session struct {
	tol    float64
	closed bool
}

func (s *session) Close() error {
	if s.closed {
		return errors.New("simplex session already closed")
	}
	s.closed = true
	return nil
}

func (s *session) Solve(ctx context.Context, model *lp.Model) solver.Result {
	if s.closed {
		return solver.Result{Status: solver.StatusOther, Err: errors.New("simplex session closed")}
	}
	if err := model.Validate(); err != nil {
		return solver.Result{Status: solver.StatusOther, Err: err}
	}

	sf, status, err := toStandardForm(model)
	if err != nil {
		return solver.Result{Status: status, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return solver.Result{Status: solver.StatusOther, Err: err}
	}

	cols := make([]float64, sf.numCols)
	if len(sf.b) > 0 {
		A := mat.NewDense(len(sf.b), sf.numCols, sf.a)
		_, x, err := gonumlp.Simplex(sf.c, A, sf.b, s.tol, nil)
		if err != nil {
			return solver.Result{Status: classify(err), Err: fmt.Errorf("simplex: %w", err)}
		}
		cols = x
	}

	values := sf.recover(cols)
	return solver.Result{
		Status:         solver.StatusOptimal,
		Values:         values,
		ObjectiveValue: model.Evaluate(values),
	}
}

func classify(err error) solver.Status {
	switch {
	case errors.Is(err, gonumlp.ErrInfeasible):
		return solver.StatusInfeasible
	case errors.Is(err, gonumlp.ErrUnbounded):
		return solver.StatusUnbounded
	default:
		return solver.StatusOther
	}
}
