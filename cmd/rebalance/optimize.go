package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aristath/rebalancer/internal/modules/portfolio"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/google/subcommands"
)

// optimizeCmd holds the flags for the 'optimize' subcommand.
type optimizeCmd struct {
	file      string
	asJSON    bool
	raw       bool
	rounding  string
	engine    string
	timeout   time.Duration
	noHistory bool
}

func (*optimizeCmd) Name() string     { return "optimize" }
func (*optimizeCmd) Synopsis() string { return "compute the minimal trades that reach a target portfolio" }
func (*optimizeCmd) Usage() string {
	return `rebalance optimize -f <request.yaml|request.json|-> [-json] [-raw]

  Reads a rebalance request (holdings, target, keep, avoid, budget) and prints
  the transaction plan. Exits 0 when a plan was found, 1 when the solver found
  none, 2 when the request could not be read.
`
}

func (c *optimizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Request file (.yaml, .yml or .json). Use - to read YAML from stdin.")
	f.BoolVar(&c.asJSON, "json", false, "Print the outcome as JSON instead of a table.")
	f.BoolVar(&c.raw, "raw", false, "Print markdown without terminal rendering.")
	f.StringVar(&c.rounding, "rounding", "", "Override QUANTITY_ROUNDING (truncate or nearest).")
	f.StringVar(&c.engine, "engine", "", "Override SOLVER_ENGINE.")
	f.DurationVar(&c.timeout, "timeout", 0, "Override SOLVER_TIMEOUT_SECONDS, e.g. 5s.")
	f.BoolVar(&c.noHistory, "no-history", false, "Do not record this run in history.db.")
}

func (c *optimizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		f.Usage()
		return subcommands.ExitUsageError
	}

	req, err := portfolio.LoadRequest(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading request %q: %v\n", c.file, err)
		return subcommands.ExitUsageError
	}

	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.rounding != "" {
		if cfg.Rounding, err = rebalancing.ParseRounding(c.rounding); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.engine != "" {
		cfg.Solver.Engine = c.engine
	}
	if c.timeout > 0 {
		cfg.Solver.Timeout = c.timeout
	}
	if c.noHistory {
		cfg.History = false
	}

	container, err := openContainer(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	out, err := container.RebalancingService.Optimize(ctx, req)
	if err != nil {
		if errors.Is(err, rebalancing.ErrInvalidRequest) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		// The outcome is still printed when only the history write failed
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		if out == nil {
			return subcommands.ExitFailure
		}
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding outcome: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		var b strings.Builder
		renderOutcome(&b, req, out)
		printMarkdown(b.String(), c.raw)
	}

	if !out.Optimal() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
