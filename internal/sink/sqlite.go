package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"replaytab/internal/database"
	"replaytab/internal/replay"
)

// SQLiteFile is the database written into the output directory.
const SQLiteFile = "tables.sqlite"

func init() {
	Register("sqlite", newSQLiteWriter)
}

// sqliteWriter shares one database between the five table sinks. The run is
// committed and the database closed when the last of them closes.
type sqliteWriter struct {
	opts Options
	db   database.Database
	refs int
}

func newSQLiteWriter(opts Options) (Writer, error) {
	return &sqliteWriter{opts: opts}, nil
}

func (w *sqliteWriter) Open(table replay.Table) (replay.Sink, error) {
	if w.db == nil {
		if err := w.begin(); err != nil {
			return nil, err
		}
	}
	w.refs++
	return &SQLite{writer: w, table: table}, nil
}

func (w *sqliteWriter) begin() error {
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	db := database.NewDatabase()
	if err := db.CreateDatabase(filepath.Join(w.opts.Dir, SQLiteFile)); err != nil {
		return err
	}
	err := db.BeginRun(database.Run{
		ID:        w.opts.RunID,
		Source:    w.opts.Source,
		Formats:   strings.Join(w.opts.Formats, ","),
		StartedAt: w.opts.StartedAt,
	})
	if err != nil {
		db.CloseDatabase()
		return err
	}
	w.db = db
	return nil
}

func (w *sqliteWriter) release() error {
	w.refs--
	if w.refs > 0 {
		return nil
	}
	db := w.db
	w.db = nil
	return db.CloseDatabase()
}

// SQLite is the sink of one table inside the shared run database.
type SQLite struct {
	writer *sqliteWriter
	table  replay.Table
	closed bool
}

func (s *SQLite) Append(rec replay.Record) error {
	if s.closed {
		return fmt.Errorf("%s sink closed", s.table)
	}
	return s.writer.db.Insert(rec)
}

func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.release()
}
