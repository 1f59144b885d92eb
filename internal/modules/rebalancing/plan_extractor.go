package rebalancing

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
)

// snapTol absorbs solver noise: 4.9999999999 is read as 5, 1e-13 as 0.
const snapTol = 1e-9

// ErrNoPlan is wrapped when a solve did not certify an optimum.
var ErrNoPlan = errors.New("no rebalance plan")

// NoPlanError carries the status that prevented a plan.
type NoPlanError struct {
	Status solver.Status
	Cause  error
}

func (e *NoPlanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: solver status %s: %v", ErrNoPlan, e.Status, e.Cause)
	}
	return fmt.Sprintf("%v: solver status %s", ErrNoPlan, e.Status)
}

// Is makes errors.Is(err, ErrNoPlan) match.
func (e *NoPlanError) Is(target error) bool {
	return target == ErrNoPlan
}

// Unwrap exposes the engine error.
func (e *NoPlanError) Unwrap() error {
	return e.Cause
}

// ExtractPlan reads the solved buy/sell values back into one entry per target
// ISIN. Any non-optimal result yields an empty plan and a *NoPlanError; there
// is no partial extraction.
func ExtractPlan(model *RebalanceModel, res solver.Result, rounding Rounding) (Plan, error) {
	if !res.Optimal() {
		return Plan{}, &NoPlanError{Status: res.Status, Cause: res.Err}
	}

	plan := make(Plan, len(model.ISINs))
	for _, isin := range model.ISINs {
		pair := model.Vars[isin]
		buy := snap(res.Value(pair.Buy))
		sell := snap(res.Value(pair.Sell))

		action := ActionKeep
		switch {
		case buy > 0:
			action = ActionBuy
		case sell > 0:
			action = ActionSell
		}

		plan[isin] = PlanEntry{
			ISIN:     isin,
			Action:   action,
			Quantity: roundQuantity(math.Max(buy, sell), rounding),
			BuyRaw:   res.Value(pair.Buy),
			SellRaw:  res.Value(pair.Sell),
		}
	}
	return plan, nil
}

// snap moves v onto the nearest integer when it is within snapTol of it, and
// clamps tiny negatives to zero.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) <= snapTol {
		v = r
	}
	if v < 0 {
		return 0
	}
	return v
}

func roundQuantity(v float64, rounding Rounding) int64 {
	if rounding == RoundNearest {
		return int64(math.Round(v))
	}
	return int64(math.Trunc(v))
}
