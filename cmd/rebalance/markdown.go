package main

import (
	"fmt"
	"io"

	"github.com/aristath/rebalancer/internal/modules/history"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/shopspring/decimal"
)

// renderOutcome writes the outcome of one optimization as markdown.
func renderOutcome(w io.Writer, req rebalancing.Request, out *rebalancing.Outcome) {
	if !out.Optimal() {
		fmt.Fprintf(w, "# No rebalance plan (%s)\n\n", out.Status)
		if out.Reason != "" {
			fmt.Fprintf(w, "%s\n\n", out.Reason)
		}
		fmt.Fprintf(w, "| Run | Engine | Budget |\n")
		fmt.Fprintf(w, "|:----|:-------|-------:|\n")
		fmt.Fprintf(w, "| %s | %s | %s |\n", out.RunID, out.Engine, decimal.NewFromFloat(out.Budget).StringFixed(2))
		return
	}

	trades := out.Plan.Trades()
	fmt.Fprintf(w, "# Rebalance plan\n\n")
	fmt.Fprintf(w, "| Run | Engine | Budget | Net cash flow | After rounding | Trades |\n")
	fmt.Fprintf(w, "|:----|:-------|-------:|--------------:|---------------:|-------:|\n")
	fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %d |\n\n",
		out.RunID,
		out.Engine,
		decimal.NewFromFloat(out.Budget).StringFixed(2),
		out.NetCashFlow.StringFixed(2),
		out.PlanCashFlow.StringFixed(2),
		len(trades),
	)

	if len(trades) == 0 {
		fmt.Fprintf(w, "The portfolio already matches the target. Nothing to do.\n")
		return
	}

	fmt.Fprintf(w, "## Transactions\n\n")
	fmt.Fprintf(w, "| ISIN | Action | Quantity | Price | Amount |\n")
	fmt.Fprintf(w, "|:-----|:-------|---------:|------:|-------:|\n")
	for _, e := range trades {
		price := decimal.NewFromFloat(req.Holdings[e.ISIN].Price)
		amount := price.Mul(decimal.NewFromInt(e.Quantity))
		fmt.Fprintf(w, "| %s | %s | %d | %s | %s |\n",
			e.ISIN, e.Action, e.Quantity, price.StringFixed(2), amount.StringFixed(2))
	}
}

// renderRuns writes a table of recorded runs as markdown.
func renderRuns(w io.Writer, runs []history.Summary) {
	fmt.Fprintf(w, "# Rebalance runs\n\n")
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded yet.\n")
		return
	}

	fmt.Fprintf(w, "| Run | Time | Status | Engine | Budget | Net cash flow | Trades |\n")
	fmt.Fprintf(w, "|:----|:-----|:-------|:-------|-------:|--------------:|-------:|\n")
	for _, r := range runs {
		net := r.NetCashFlow
		if d, err := decimal.NewFromString(r.NetCashFlow); err == nil {
			net = d.StringFixed(2)
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %d |\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Status,
			r.Engine,
			decimal.NewFromFloat(r.Budget).StringFixed(2),
			net,
			r.TradeCount,
		)
	}
}
