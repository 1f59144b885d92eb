// Package rebalancing turns a current portfolio and a target allocation into the
// smallest set of buy/sell transactions, by way of a linear program.
package rebalancing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Holding is the current position in one security.
type Holding struct {
	Quantity float64 `json:"quantity" yaml:"quantity" msgpack:"quantity"`
	Price    float64 `json:"price" yaml:"price" msgpack:"price"`
}

// Request holds every input of a rebalance. All maps are keyed by ISIN.
type Request struct {
	Holdings map[string]Holding `json:"holdings" yaml:"holdings" msgpack:"holdings"`
	Target   map[string]float64 `json:"target" yaml:"target" msgpack:"target"`
	Keep     []string           `json:"keep,omitempty" yaml:"keep,omitempty" msgpack:"keep"`
	Avoid    []string           `json:"avoid,omitempty" yaml:"avoid,omitempty" msgpack:"avoid"`
	Budget   float64            `json:"budget" yaml:"budget" msgpack:"budget"`
}

// ErrInvalidRequest is wrapped by every Validate failure.
var ErrInvalidRequest = errors.New("invalid rebalance request")

// Validate rejects inputs the model cannot represent faithfully: negative or
// non-finite budget, prices, quantities and targets, and empty ISINs.
func (r Request) Validate() error {
	if !nonNegative(r.Budget) {
		return fmt.Errorf("%w: budget must be a non-negative number, got %g", ErrInvalidRequest, r.Budget)
	}
	for isin, h := range r.Holdings {
		if isin == "" {
			return fmt.Errorf("%w: holding with empty ISIN", ErrInvalidRequest)
		}
		if !nonNegative(h.Quantity) {
			return fmt.Errorf("%w: holding %s has invalid quantity %g", ErrInvalidRequest, isin, h.Quantity)
		}
		if !nonNegative(h.Price) {
			return fmt.Errorf("%w: holding %s has invalid price %g", ErrInvalidRequest, isin, h.Price)
		}
	}
	for isin, qty := range r.Target {
		if isin == "" {
			return fmt.Errorf("%w: target with empty ISIN", ErrInvalidRequest)
		}
		if !nonNegative(qty) {
			return fmt.Errorf("%w: target %s has invalid quantity %g", ErrInvalidRequest, isin, qty)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ISINs returns the target ISINs in sorted order.
func (r Request) ISINs() []string {
	isins := make([]string, 0, len(r.Target))
	for isin := range r.Target {
		isins = append(isins, isin)
	}
	sort.Strings(isins)
	return isins
}

func toSet(isins []string) map[string]bool {
	set := make(map[string]bool, len(isins))
	for _, isin := range isins {
		set[isin] = true
	}
	return set
}

// Action is what the plan asks for one security.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionKeep Action = "Keep"
)

// PlanEntry is the transaction for one target ISIN.
type PlanEntry struct {
	ISIN     string  `json:"isin"`
	Action   Action  `json:"action"`
	Quantity int64   `json:"quantity"`
	BuyRaw   float64 `json:"buy_raw"`  // solver value before rounding
	SellRaw  float64 `json:"sell_raw"` // solver value before rounding
}

// Plan maps every target ISIN to its entry.
type Plan map[string]PlanEntry

// Entries returns all entries sorted by ISIN.
func (p Plan) Entries() []PlanEntry {
	entries := make([]PlanEntry, 0, len(p))
	for _, e := range p {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ISIN < entries[j].ISIN })
	return entries
}

// Trades returns the entries that move a position, sorted by ISIN.
func (p Plan) Trades() []PlanEntry {
	trades := make([]PlanEntry, 0, len(p))
	for _, e := range p.Entries() {
		if e.Action != ActionKeep {
			trades = append(trades, e)
		}
	}
	return trades
}

// Rounding selects how fractional solver quantities become whole shares.
type Rounding string

const (
	// RoundTruncate floors toward zero.
	RoundTruncate Rounding = "truncate"
	// RoundNearest rounds half away from zero.
	RoundNearest Rounding = "nearest"
)

// ParseRounding parses a rounding mode name. Empty means RoundTruncate.
func ParseRounding(s string) (Rounding, error) {
	switch Rounding(s) {
	case "", RoundTruncate:
		return RoundTruncate, nil
	case RoundNearest:
		return RoundNearest, nil
	default:
		return "", fmt.Errorf("unknown quantity rounding %q (want %q or %q)", s, RoundTruncate, RoundNearest)
	}
}
