package testing

import (
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
)

// NewReferenceRequest returns the two-holding, three-target request used across
// tests. With the default budget of 1000 it is infeasible: the targets cost 1500.
func NewReferenceRequest() rebalancing.Request {
	return rebalancing.Request{
		Holdings: map[string]rebalancing.Holding{
			"ISIN1": {Quantity: 10, Price: 100},
			"ISIN2": {Quantity: 20, Price: 200},
		},
		Target: map[string]float64{
			"ISIN1": 15,
			"ISIN2": 25,
			"ISIN3": 35,
		},
		Keep:   []string{},
		Avoid:  []string{"ISIN3"},
		Budget: 1000,
	}
}

// NewFundedReferenceRequest is NewReferenceRequest with enough budget to buy
// both targets.
func NewFundedReferenceRequest() rebalancing.Request {
	req := NewReferenceRequest()
	req.Budget = 1500
	return req
}

// NewEuropeanPortfolioRequest returns a realistic mixed buy/sell request with
// real-looking ISINs, one kept position and one avoided position.
func NewEuropeanPortfolioRequest() rebalancing.Request {
	return rebalancing.Request{
		Holdings: map[string]rebalancing.Holding{
			"IE00B4L5Y983": {Quantity: 120, Price: 85.40}, // MSCI World ETF
			"IE00BKM4GZ66": {Quantity: 200, Price: 31.10}, // EM IMI ETF
			"DE0007164600": {Quantity: 15, Price: 182.30}, // SAP
			"NL0010273215": {Quantity: 4, Price: 690.00},  // ASML
			"FR0000121014": {Quantity: 6, Price: 710.50},  // LVMH
		},
		Target: map[string]float64{
			"IE00B4L5Y983": 140,
			"IE00BKM4GZ66": 180,
			"DE0007164600": 15,
			"NL0010273215": 4,
			"FR0000121014": 3,
		},
		Keep:   []string{"DE0007164600"},
		Avoid:  []string{"NL0010273215"},
		Budget: 2500,
	}
}
