package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Verbosity levels accepted from the command line.
const (
	Silent    = 0 // no output
	Lifecycle = 1 // parse/match/round milestones
	Records   = 2 // one line per emitted record
)

// Logger provides centralized logging for the entire application
type Logger struct {
	logger *slog.Logger
	file   *os.File
}

var globalLogger *Logger

// init installs a silent logger; callers opt in through Configure.
func init() {
	globalLogger = &Logger{logger: slog.New(slog.DiscardHandler)}
}

// Configure points the global logger at w with the level implied by verbosity.
func Configure(verbosity int, w io.Writer) {
	replace(&Logger{logger: slog.New(newHandler(verbosity, w))})
}

// SetFileOutput configures the logger to append to the specified file
func SetFileOutput(filename string, verbosity int) error {
	logger, err := NewLogger(filename, verbosity)
	if err != nil {
		return err
	}
	replace(logger)
	return nil
}

// NewLogger creates a logger that appends to the specified file
func NewLogger(filename string, verbosity int) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &Logger{
		logger: slog.New(newHandler(verbosity, file)),
		file:   file,
	}, nil
}

func replace(logger *Logger) {
	// Close existing file if we own one
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
	}
	globalLogger = logger
}

// newHandler picks a human-readable handler for terminals and JSON otherwise.
func newHandler(verbosity int, w io.Writer) slog.Handler {
	if verbosity <= Silent || w == nil {
		return slog.DiscardHandler
	}
	level := slog.LevelInfo
	if verbosity >= Records {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{
					Key:   slog.TimeKey,
					Value: slog.StringValue(a.Value.Time().Format("2006/01/02 15:04:05.000000")),
				}
			}
			return a
		},
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Standard logging methods
func Debug(msg string, args ...any) {
	globalLogger.logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	globalLogger.logger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	globalLogger.logger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	globalLogger.logger.Error(msg, args...)
}

// DebugEnabled reports whether per-record logging is on, so callers can skip
// building expensive attributes.
func DebugEnabled() bool {
	return globalLogger.logger.Enabled(context.Background(), slog.LevelDebug)
}

// Close closes the log file, if any, and falls back to silence.
func Close() {
	replace(&Logger{logger: slog.New(slog.DiscardHandler)})
}
