package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"replaytab/internal/config"
	"replaytab/internal/log"
	"replaytab/internal/pipeline"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	// Set up global panic handler first
	defer func() {
		if r := recover(); r != nil {
			log.Error("GLOBAL PANIC recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "replaytab crashed: %v\n", r)
			code = 1
		}
	}()

	cfg, err := config.Load("replaytab", os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "replaytab %s (%s, %s)\n", version, commit, date)
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.LogFile != "" {
		if err := log.SetFileOutput(cfg.LogFile, cfg.Verbosity); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not configure logging to file: %v\n", err)
			log.Configure(cfg.Verbosity, os.Stderr)
		}
	} else {
		log.Configure(cfg.Verbosity, os.Stderr)
	}
	defer log.Close()

	// Interrupts cancel the run between events; outputs are still closed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("replaytab starting", "version", version, "commit", commit)
	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		log.Error("Run failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info("Tables written", "dir", res.Dir, "run_id", res.RunID.String())
	return 0
}
