// Command rebalance computes rebalance plans from request files, lists past
// runs and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var logLevel = flag.String("log-level", "warn", "Log level for diagnostics written to stderr (debug, info, warn, error)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&optimizeCmd{}, "rebalancing")
	commander.Register(&runsCmd{}, "rebalancing")
	commander.Register(&serveCmd{}, "server")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
