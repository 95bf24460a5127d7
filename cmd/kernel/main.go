// Command kernel is the operator CLI of the finance kernel. It runs period
// closing, depreciation, revaluation, sub-ledger reports, the event outbox
// relay and schema migrations against the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "kernel: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("kernel", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "Path to a TOML config file (default: ./config.toml when present)")
	logLevel := fs.String("log-level", "", "Override log.level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	command, rest := fs.Arg(0), fs.Args()[1:]

	handler, ok := commands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	a, err := newApp(ctx, *configPath, *logLevel, stdout)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return handler(ctx, a, rest)
}

type commandFunc func(ctx context.Context, a *app, args []string) error

var commands = map[string]commandFunc{
	"migrate":      migrateCommand,
	"close-period": closePeriodCommand,
	"depreciate":   depreciateCommand,
	"dispose":      disposeCommand,
	"rate":         rateCommand,
	"revalue":      revalueCommand,
	"reconcile":    reconcileCommand,
	"aging":        agingCommand,
	"outbox":       outboxCommand,
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Finance kernel operator CLI

Usage:
  kernel [-config file] [-log-level level] <command> [flags]

Commands:
  migrate up|down|version|steps <n>|force <v>|list|create <dir> <name>
  close-period  -tenant ID -period ID
  depreciate    -tenant ID -entity ID -period ID
  dispose       -tenant ID -asset ID -date YYYY-MM-DD -proceeds AMOUNT
  rate          -tenant ID -from CCY -to CCY -type CLOSING -date YYYY-MM-DD -rate VALUE [-source S]
  revalue       -tenant ID -entity ID -cutoff YYYY-MM-DD [-currencies USD,EUR]
  reconcile     -tenant ID -type AR|AP -as-of YYYY-MM-DD
  aging         -tenant ID -type AR|AP -as-of YYYY-MM-DD
  outbox drain  [-batch n]

Configuration is read from config.toml and KERNEL_* environment variables.
`)
}
