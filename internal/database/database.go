package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"replaytab/internal/log"
	"replaytab/internal/replay"
)

// Database is the run store behind the sqlite output format.
type Database interface {
	// Core database operations
	CreateDatabase(filename string) error
	CloseDatabase() error
	GetDatabaseOpen() bool

	// Run operations. Rows of one run share a single transaction.
	BeginRun(run Run) error
	Insert(rec replay.Record) error
	CommitRun() error
	Runs() ([]Run, error)

	// Internal access for advanced operations
	GetDB() *sql.DB
}

// SQLiteDatabase implements Database interface using SQLite
type SQLiteDatabase struct {
	db       *sql.DB
	dbOpen   bool
	filename string
	tx       *sql.Tx // Transaction of the current run
	run      Run
	rows     int

	// Prepared statements for performance
	insertStmts map[replay.Table]*sql.Stmt
}

// NewDatabase creates a new SQLite database instance
func NewDatabase() *SQLiteDatabase {
	return &SQLiteDatabase{}
}

// CreateDatabase opens filename, creating it if needed, and brings its schema
// up to date. Runs already stored in the file are kept.
func (d *SQLiteDatabase) CreateDatabase(filename string) error {
	if d.dbOpen {
		return fmt.Errorf("database already open")
	}

	var err error
	d.db, err = sql.Open("sqlite", filename+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; the run transaction must see its own inserts.
	d.db.SetMaxOpenConns(1)

	if err = d.db.Ping(); err != nil {
		d.db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = d.runMigrations(); err != nil {
		d.db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.filename = filename
	d.dbOpen = true
	log.Debug("Database opened", "file", filename)
	return nil
}

// BeginRun records run in the runs table and opens the transaction that
// holds its rows.
func (d *SQLiteDatabase) BeginRun(run Run) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}
	if d.tx != nil {
		return fmt.Errorf("run %s already in progress", d.run.ID)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	query, args, err := sq.Insert("runs").
		Columns("run_id", "source", "formats", "started_at").
		Values(run.ID.String(), run.Source, run.Formats, run.StartedAt.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to build run insert: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmts := make(map[replay.Table]*sql.Stmt, len(replay.AllTables))
	for _, t := range replay.AllTables {
		stmt, err := prepareInsert(tx, t)
		if err != nil {
			closeStatements(stmts)
			tx.Rollback()
			return err
		}
		stmts[t] = stmt
	}

	d.tx = tx
	d.run = run
	d.rows = 0
	d.insertStmts = stmts
	return nil
}

func prepareInsert(tx *sql.Tx, t replay.Table) (*sql.Stmt, error) {
	cols := append([]string{"run_id"}, t.Columns()...)
	query, _, err := sq.Insert(string(t)).
		Columns(cols...).
		Values(make([]any, len(cols))...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s insert: %w", t, err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s insert: %w", t, err)
	}
	return stmt, nil
}

// Insert appends rec to the current run.
func (d *SQLiteDatabase) Insert(rec replay.Record) error {
	if d.tx == nil {
		return fmt.Errorf("no run in progress")
	}
	stmt, ok := d.insertStmts[rec.Table()]
	if !ok {
		return fmt.Errorf("unknown table %q", rec.Table())
	}
	args := append([]any{d.run.ID.String()}, rec.Values()...)
	if _, err := stmt.Exec(args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", rec.Table(), err)
	}
	d.rows++
	return nil
}

// CommitRun commits every row of the current run.
func (d *SQLiteDatabase) CommitRun() error {
	if d.tx == nil {
		return nil
	}
	closeStatements(d.insertStmts)
	d.insertStmts = nil

	err := d.tx.Commit()
	d.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit run %s: %w", d.run.ID, err)
	}
	log.Debug("Run committed", "run_id", d.run.ID.String(), "rows", d.rows)
	return nil
}

// Runs lists the stored runs, oldest first.
func (d *SQLiteDatabase) Runs() ([]Run, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	query, args, err := sq.Select("run_id", "source", "formats", "started_at").
		From("runs").
		OrderBy("started_at", "run_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var id, started string
		var run Run
		if err := rows.Scan(&id, &run.Source, &run.Formats, &started); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s start time: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CloseDatabase commits any run still in progress and closes the connection.
func (d *SQLiteDatabase) CloseDatabase() error {
	if !d.dbOpen {
		return nil
	}

	commitErr := d.CommitRun()

	var closeErr error
	if err := d.db.Close(); err != nil {
		closeErr = fmt.Errorf("failed to close database: %w", err)
	}

	d.dbOpen = false
	d.filename = ""
	return errors.Join(commitErr, closeErr)
}

// GetDatabaseOpen reports whether the database is open.
func (d *SQLiteDatabase) GetDatabaseOpen() bool {
	return d.dbOpen
}

// GetDB returns the underlying connection.
func (d *SQLiteDatabase) GetDB() *sql.DB {
	return d.db
}

func closeStatements(stmts map[replay.Table]*sql.Stmt) {
	for _, stmt := range stmts {
		stmt.Close()
	}
}
