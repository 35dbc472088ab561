// Package pipeline wires a configured input to the configured output formats.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"replaytab/internal/config"
	"replaytab/internal/demo"
	"replaytab/internal/log"
	"replaytab/internal/replay"
	"replaytab/internal/script"
	"replaytab/internal/sink"
)

// Result describes a finished run.
type Result struct {
	RunID uuid.UUID
	Dir   string
	Stats replay.Stats
}

// eventLister is a source that knows which game events its replay declares.
type eventLister interface {
	EventNames() []string
}

// OpenSource opens the demo or script named by cfg.
func OpenSource(cfg config.Config) (replay.Source, error) {
	if cfg.Demo != "" {
		return demo.Open(cfg.Demo)
	}
	return script.Open(cfg.Script)
}

// Run extracts one replay. Every sink is opened before the first event is
// read; a failure to open any of them aborts before parsing starts.
func Run(ctx context.Context, cfg config.Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	delimiter, _ := cfg.DelimiterRune()

	src, err := OpenSource(cfg)
	if err != nil {
		return Result{}, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	res := Result{RunID: uuid.New(), Dir: cfg.OutputDir()}
	opts := sink.Options{
		Dir:       res.Dir,
		Delimiter: delimiter,
		Charset:   cfg.Charset,
		Compress:  cfg.Compress,
		RunID:     res.RunID,
		Source:    cfg.Input(),
		Formats:   cfg.Formats,
		StartedAt: time.Now(),
	}
	tables, err := sink.OpenTables(opts)
	if err != nil {
		return res, fmt.Errorf("open outputs: %w", err)
	}

	log.Info("Run started",
		"run_id", res.RunID.String(),
		"input", cfg.Input(),
		"out", res.Dir,
		"formats", strings.Join(cfg.Formats, ","))

	res.Stats, err = replay.Run(ctx, src, tables)
	return res, errors.Join(err, dumpEvents(opts, src))
}

// dumpEvents writes the event list of src, when it has one. A demo that failed
// before its signon data has none, and no file is written.
func dumpEvents(opts sink.Options, src replay.Source) error {
	lister, ok := src.(eventLister)
	if !ok {
		return nil
	}
	names := lister.EventNames()
	if len(names) == 0 {
		return nil
	}
	return sink.WriteEventDump(opts, names)
}
