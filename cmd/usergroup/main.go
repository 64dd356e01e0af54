// usergroup is an interactive tool that pretends to modify users and
// groups. It demonstrates nested commands, per-command tab completion
// and multi-level help.
//
// With arguments it runs them as a single command and exits:
//
//	usergroup user add zebedee
//
// Without arguments it starts an interactive session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/psaab/shellac/pkg/api"
	"github.com/psaab/shellac/pkg/cli"
	"github.com/psaab/shellac/pkg/metrics"
)

func main() {
	configFile := flag.String("config", "usergroup.yaml", "configuration file path")
	timeout := flag.Duration("timeout", 0, "directory search timeout (overrides config)")
	history := flag.String("history", "", "history file (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP metrics listen address (empty to disable)")
	helpKey := flag.Bool("help-key", true, "list possible commands when '?' is typed")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg, err := loadConfig(*configFile, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usergroup: %v\n", err)
		os.Exit(1)
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *history != "" {
		cfg.HistoryFile = *history
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if err := run(cfg, *helpKey, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "usergroup: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config, helpKey bool, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats := metrics.NewStats()
	if cfg.MetricsAddr != "" {
		srv := api.NewServer(api.Config{Addr: cfg.MetricsAddr, Stats: stats})
		go func() {
			if err := srv.Run(ctx); err != nil {
				slog.Warn("metrics server failed", "err", err)
			}
		}()
	}

	dir := NewDirectory(cfg)
	sh, err := cli.New(buildTree(dir, os.Stdout), cli.Config{
		Intro:       rootDoc,
		HistoryFile: cfg.HistoryFile,
		HelpKey:     helpKey,
		Recorder:    stats,
	})
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return sh.RunOnce(ctx, args)
	}
	err = sh.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
