// ====================================
// File: cmd/memescope/main.go
// ====================================
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

	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/app"
	"github.com/rovshanmuradov/memescope/internal/config"
	"github.com/rovshanmuradov/memescope/internal/logger"
)

const usage = `usage: memescope [-config path] <command> [flags]

commands:
  score     -file f [-json] [-save]          score a snapshot dataset
  backtest  -file f [-export csv|json|default] [-misses] [-save]
                                             evaluate scores against outcomes
  watch                                      live trending dashboard
  history   [-address mint] [-limit n]       stored assessments
  run       -id uuid                         show a stored backtest run
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("memescope", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "Path to config file (JSON or YAML)")
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	command, rest := global.Arg(0), global.Args()[1:]

	logCfg := logger.Config{Debug: cfg.DebugLogging, File: cfg.LogFile}
	var opts []app.Option
	if command == "watch" {
		// консольный вывод сломает TUI
		buffer := logger.NewLogBuffer(200)
		logCfg.Buffer = buffer
		opts = append(opts, app.WithLogBuffer(buffer))
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := app.NewRunner(cfg, log.Logger, stdout, opts...)
	defer func() {
		if err := runner.Close(context.Background()); err != nil {
			log.Warn("Shutdown finished with errors", zap.Error(err))
		}
	}()

	switch command {
	case "score":
		return scoreCmd(ctx, runner, rest, stderr)
	case "backtest":
		return backtestCmd(ctx, runner, cfg, rest, stderr)
	case "watch":
		return runner.Watch(ctx)
	case "history":
		return historyCmd(ctx, runner, rest, stderr)
	case "run":
		return showRunCmd(ctx, runner, rest, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return errUsage
	}
}

func scoreCmd(ctx context.Context, runner *app.Runner, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Snapshot dataset (.json/.yaml)")
	asJSON := fs.Bool("json", false, "Print assessments as JSON")
	save := fs.Bool("save", false, "Store assessments in SQLite")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	_, err := runner.Score(ctx, app.ScoreOptions{File: *file, JSON: *asJSON, Save: *save})
	return err
}

func backtestCmd(ctx context.Context, runner *app.Runner, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Labelled snapshot dataset (.json/.yaml)")
	format := fs.String("export", "", "Export format (csv|json); empty disables export")
	misses := fs.Bool("misses", false, "Export only incorrect predictions")
	save := fs.Bool("save", false, "Store the run in SQLite")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *format == "default" {
		*format = cfg.ExportFormat
	}
	_, _, err := runner.Backtest(ctx, app.BacktestOptions{
		File:       *file,
		Export:     *format,
		OnlyMisses: *misses,
		Save:       *save,
	})
	return err
}

func historyCmd(ctx context.Context, runner *app.Runner, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	address := fs.String("address", "", "Token mint address; empty lists all tokens")
	limit := fs.Int("limit", 20, "Maximum number of rows")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	_, err := runner.History(ctx, *address, *limit)
	return err
}

func showRunCmd(ctx context.Context, runner *app.Runner, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "Backtest run id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" {
		fmt.Fprintln(stderr, "run: -id is required")
		return errUsage
	}
	_, err := runner.ShowRun(ctx, *id)
	return err
}
