// Package sink writes replay tables in the registered output formats.
package sink

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"replaytab/internal/replay"
)

// Options are shared by every output format of one run.
type Options struct {
	Dir       string    // Output directory, created if missing
	Delimiter rune      // CSV field separator
	Charset   string    // CSV character set, see Charsets
	Compress  bool      // gzip file outputs
	RunID     uuid.UUID // Stamped into every output that has a header
	Source    string    // Input path, recorded by the sqlite format
	Formats   []string  // All formats of the run, recorded by the sqlite format
	StartedAt time.Time
}

// Writer opens the per-table sinks of one output format.
type Writer interface {
	Open(table replay.Table) (replay.Sink, error)
}

// Factory creates the Writer of a format for one run.
type Factory func(opts Options) (Writer, error)

// Writer registry (format → factory). Formats register in init() blocks.
var factories = map[string]Factory{}

// Register adds a format. Registering a name again replaces it.
func Register(format string, f Factory) { factories[format] = f }

// Formats lists registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether format is registered.
func Known(format string) bool {
	_, ok := factories[format]
	return ok
}

// OpenTables opens every table in every requested format. A table written in
// several formats gets a fan-out sink.
func OpenTables(opts Options) (*replay.Tables, error) {
	if len(opts.Formats) == 0 {
		return nil, errors.New("no output format")
	}

	writers := make([]Writer, 0, len(opts.Formats))
	for _, format := range opts.Formats {
		f, ok := factories[format]
		if !ok {
			return nil, fmt.Errorf("unknown output format %q (no writer registered)", format)
		}
		w, err := f(opts)
		if err != nil {
			return nil, fmt.Errorf("%s output: %w", format, err)
		}
		writers = append(writers, w)
	}

	return replay.NewTables(func(table replay.Table) (replay.Sink, error) {
		sinks := make([]replay.Sink, 0, len(writers))
		for i, w := range writers {
			s, err := w.Open(table)
			if err != nil {
				closeErr := closeAll(sinks)
				return nil, errors.Join(fmt.Errorf("%s: %w", opts.Formats[i], err), closeErr)
			}
			sinks = append(sinks, s)
		}
		if len(sinks) == 1 {
			return sinks[0], nil
		}
		return NewMulti(sinks...), nil
	})
}
