package rebalancing

import (
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/shopspring/decimal"
)

// SolvedCashFlow is the net cash outflow of the raw solution:
// sum(price*buy - price*sell) using the prices of the budget row.
func SolvedCashFlow(model *RebalanceModel, res solver.Result) decimal.Decimal {
	total := decimal.Zero
	if !res.Optimal() {
		return total
	}
	for _, isin := range model.ISINs {
		price := decimal.NewFromFloat(model.Prices[isin])
		pair := model.Vars[isin]
		net := decimal.NewFromFloat(res.Value(pair.Buy)).Sub(decimal.NewFromFloat(res.Value(pair.Sell)))
		total = total.Add(price.Mul(net))
	}
	return total
}

// PlanCashFlow is the net cash outflow of the rounded plan.
func PlanCashFlow(model *RebalanceModel, plan Plan) decimal.Decimal {
	total := decimal.Zero
	for isin, e := range plan {
		value := decimal.NewFromFloat(model.Prices[isin]).Mul(decimal.NewFromInt(e.Quantity))
		switch e.Action {
		case ActionBuy:
			total = total.Add(value)
		case ActionSell:
			total = total.Sub(value)
		}
	}
	return total
}
