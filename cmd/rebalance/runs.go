package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aristath/rebalancer/internal/modules/history"
	"github.com/google/subcommands"
)

// runsCmd holds the flags for the 'runs' subcommand.
type runsCmd struct {
	limit  int
	asJSON bool
	raw    bool
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list recorded optimization runs" }
func (*runsCmd) Usage() string {
	return `rebalance runs [-n <count>] [<run-id>]

  Without an argument, lists the most recent runs. With a run id, prints the
  stored plan of that run.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of runs to list.")
	f.BoolVar(&c.asJSON, "json", false, "Print JSON instead of a table.")
	f.BoolVar(&c.raw, "raw", false, "Print markdown without terminal rendering.")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	if !cfg.History {
		fmt.Fprintln(os.Stderr, "Error: run history is disabled (HISTORY_ENABLED=false)")
		return subcommands.ExitFailure
	}

	container, err := openContainer(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	var b strings.Builder
	var payload interface{}

	if f.NArg() == 1 {
		run, err := container.HistoryRepo.Get(ctx, f.Arg(0))
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
			return subcommands.ExitFailure
		}
		payload = run
		renderOutcome(&b, run.Request, &run.Outcome)
	} else {
		runs, err := container.HistoryRepo.List(ctx, c.limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
			return subcommands.ExitFailure
		}
		payload = runs
		renderRuns(&b, runs)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(b.String(), c.raw)
	return subcommands.ExitSuccess
}
