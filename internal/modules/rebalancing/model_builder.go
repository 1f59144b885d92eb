package rebalancing

import (
	"math"

	"github.com/aristath/rebalancer/internal/modules/optimization/lp"
)

// Constraint names used in built models.
const (
	BudgetConstraint = "budget"
	targetPrefix     = "target_"
)

// VarPair holds the buy and sell variables of one ISIN.
type VarPair struct {
	Buy  lp.VarID
	Sell lp.VarID
}

// RebalanceModel is the linear program for a request plus the lookup tables
// needed to read the solution back.
type RebalanceModel struct {
	LP     *lp.Model
	ISINs  []string // target ISINs, sorted
	Vars   map[string]VarPair
	Prices map[string]float64 // price used in the budget row, 0 when unheld
}

// TargetConstraintName returns the name of the quantity constraint of isin.
func TargetConstraintName(isin string) string {
	return targetPrefix + isin
}

// KeepOverridesAvoid reports how an ISIN listed in both keep and avoid is
// modeled: its variables are pinned to zero as for keep, and it gets no target
// constraint as for avoid. The result is "do not trade, whatever the target".
func KeepOverridesAvoid(isin string, keep, avoid map[string]bool) (pinned, targeted bool) {
	return keep[isin], !avoid[isin]
}

// BuildModel translates a request into a linear program:
//
//	variables   buy_i, sell_i >= 0 for every target ISIN ([0,0] when kept)
//	budget      0 <= sum(price_i*buy_i - price_i*sell_i) <= budget
//	target      buy_i - sell_i = target_i - current_i  (ISIN not avoided)
//	objective   minimize sum(buy_i + sell_i)
//
// An ISIN without a holding has price 0, so buying it costs nothing in the
// budget row. BuildModel never fails and never validates.
func BuildModel(req Request) *RebalanceModel {
	keep := toSet(req.Keep)
	avoid := toSet(req.Avoid)
	isins := req.ISINs()

	model := &RebalanceModel{
		LP:     lp.NewModel("rebalance"),
		ISINs:  isins,
		Vars:   make(map[string]VarPair, len(isins)),
		Prices: make(map[string]float64, len(isins)),
	}
	m := model.LP

	for _, isin := range isins {
		upper := math.Inf(1)
		if pinned, _ := KeepOverridesAvoid(isin, keep, avoid); pinned {
			upper = 0
		}
		model.Vars[isin] = VarPair{
			Buy:  m.AddVariable("buy_"+isin, 0, upper),
			Sell: m.AddVariable("sell_"+isin, 0, upper),
		}
	}

	budget := m.AddConstraint(BudgetConstraint, 0, req.Budget)
	for _, isin := range isins {
		price := 0.0
		if h, ok := req.Holdings[isin]; ok {
			price = h.Price
		}
		model.Prices[isin] = price
		if price == 0 {
			continue
		}
		pair := model.Vars[isin]
		budget.SetCoefficient(pair.Buy, price)
		budget.SetCoefficient(pair.Sell, -price)
	}

	for _, isin := range isins {
		if _, targeted := KeepOverridesAvoid(isin, keep, avoid); !targeted {
			continue
		}
		delta := req.Target[isin] - req.Holdings[isin].Quantity
		pair := model.Vars[isin]
		c := m.AddConstraint(TargetConstraintName(isin), delta, delta)
		c.SetCoefficient(pair.Buy, 1)
		c.SetCoefficient(pair.Sell, -1)
	}

	for _, isin := range isins {
		pair := model.Vars[isin]
		m.Objective.SetCoefficient(pair.Buy, 1)
		m.Objective.SetCoefficient(pair.Sell, 1)
	}

	return model
}
