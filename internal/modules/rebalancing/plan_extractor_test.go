package rebalancing

import (
	"errors"
	"testing"

	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlan_Actions(t *testing.T) {
	model := BuildModel(Request{
		Target: map[string]float64{"B": 1, "K": 1, "S": 1},
	})
	values := make([]float64, model.LP.NumVariables())
	values[model.Vars["B"].Buy] = 5
	values[model.Vars["S"].Sell] = 3.7
	res := solver.Result{Status: solver.StatusOptimal, Values: values}

	plan, err := ExtractPlan(model, res, RoundTruncate)
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, PlanEntry{ISIN: "B", Action: ActionBuy, Quantity: 5, BuyRaw: 5}, plan["B"])
	assert.Equal(t, PlanEntry{ISIN: "S", Action: ActionSell, Quantity: 3, SellRaw: 3.7}, plan["S"])
	assert.Equal(t, PlanEntry{ISIN: "K", Action: ActionKeep, Quantity: 0}, plan["K"])

	assert.Equal(t, []string{"B", "S"}, isinsOf(plan.Trades()))
	assert.Equal(t, []string{"B", "K", "S"}, isinsOf(plan.Entries()))
}

func TestExtractPlan_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		rounding Rounding
		action   Action
		quantity int64
	}{
		{"truncate fraction", 5.7, RoundTruncate, ActionBuy, 5},
		{"nearest fraction", 5.7, RoundNearest, ActionBuy, 6},
		{"solver noise below integer", 4.99999999999, RoundTruncate, ActionBuy, 5},
		{"solver noise above zero", 1e-12, RoundTruncate, ActionKeep, 0},
		{"tiny negative", -1e-12, RoundTruncate, ActionKeep, 0},
		{"sub-share buy truncates to zero", 0.4, RoundTruncate, ActionBuy, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := BuildModel(Request{Target: map[string]float64{"X": 1}})
			values := make([]float64, 2)
			values[model.Vars["X"].Buy] = tc.value
			plan, err := ExtractPlan(model, solver.Result{Status: solver.StatusOptimal, Values: values}, tc.rounding)
			require.NoError(t, err)
			assert.Equal(t, tc.action, plan["X"].Action)
			assert.Equal(t, tc.quantity, plan["X"].Quantity)
		})
	}
}

func TestExtractPlan_NonOptimalIsEmpty(t *testing.T) {
	model := BuildModel(referenceRequest())
	cause := errors.New("engine says no")

	for _, status := range []solver.Status{
		solver.StatusInfeasible,
		solver.StatusUnbounded,
		solver.StatusSolverUnavailable,
		solver.StatusOther,
	} {
		t.Run(status.String(), func(t *testing.T) {
			plan, err := ExtractPlan(model, solver.Result{Status: status, Err: cause}, RoundTruncate)
			assert.Empty(t, plan)
			assert.ErrorIs(t, err, ErrNoPlan)
			assert.ErrorIs(t, err, cause)

			var npe *NoPlanError
			require.True(t, errors.As(err, &npe))
			assert.Equal(t, status, npe.Status)
			assert.Contains(t, err.Error(), status.String())
		})
	}
}

func TestParseRounding(t *testing.T) {
	r, err := ParseRounding("")
	require.NoError(t, err)
	assert.Equal(t, RoundTruncate, r)

	r, err = ParseRounding("nearest")
	require.NoError(t, err)
	assert.Equal(t, RoundNearest, r)

	_, err = ParseRounding("banker")
	assert.Error(t, err)
}

func isinsOf(entries []PlanEntry) []string {
	isins := make([]string, len(entries))
	for i, e := range entries {
		isins[i] = e.ISIN
	}
	return isins
}
