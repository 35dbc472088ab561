//go:build integration

package setup

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"replaytab/internal/replay"
	"replaytab/internal/sink"
)

// DBAsserts provides database assertion helpers for integration tests
type DBAsserts struct {
	t     *testing.T
	db    *sql.DB
	runID string
}

// OpenTables opens the tables.sqlite written into dir and scopes every
// assertion to runID.
func OpenTables(t *testing.T, dir, runID string) *DBAsserts {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, sink.SQLiteFile))
	if err != nil {
		t.Fatalf("Failed to open tables database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &DBAsserts{t: t, db: db, runID: runID}
}

// AssertRowCount verifies how many rows the run wrote into table
func (a *DBAsserts) AssertRowCount(table replay.Table, expected int) {
	a.t.Helper()
	var n int
	err := a.db.QueryRow("SELECT COUNT(*) FROM "+string(table)+" WHERE run_id = ?", a.runID).Scan(&n)
	if err != nil {
		a.t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	if n != expected {
		a.t.Errorf("Expected %d %s rows, got %d", expected, table, n)
	}
}

// AssertUtilityEvents verifies the utility_lifecycle event names in row order
func (a *DBAsserts) AssertUtilityEvents(expected ...string) {
	a.t.Helper()
	got := a.strings("SELECT event FROM utility_lifecycle WHERE run_id = ? ORDER BY row_id")
	a.assertEqual("utility events", expected, got)
}

// AssertBombEvents verifies the bomb_lifecycle event names in row order
func (a *DBAsserts) AssertBombEvents(expected ...string) {
	a.t.Helper()
	got := a.strings("SELECT event FROM bomb_lifecycle WHERE run_id = ? ORDER BY row_id")
	a.assertEqual("bomb events", expected, got)
}

// AssertSnapshot verifies one player's health and place at a tick
func (a *DBAsserts) AssertSnapshot(tick, userID, health int, place string) {
	a.t.Helper()
	var gotHealth int
	var gotPlace string
	err := a.db.QueryRow("SELECT health, place_name FROM tick WHERE run_id = ? AND tick = ? AND user_id = ?",
		a.runID, tick, userID).Scan(&gotHealth, &gotPlace)
	if err == sql.ErrNoRows {
		a.t.Errorf("Expected a snapshot of player %d at tick %d, found none", userID, tick)
		return
	}
	if err != nil {
		a.t.Fatalf("Failed to query snapshot: %v", err)
	}
	if gotHealth != health || gotPlace != place {
		a.t.Errorf("Snapshot of player %d at tick %d: got health %d place %q, want %d %q",
			userID, tick, gotHealth, gotPlace, health, place)
	}
}

// AssertNoRowsBefore verifies that no table holds a row older than tick
func (a *DBAsserts) AssertNoRowsBefore(tick int) {
	a.t.Helper()
	for _, table := range replay.AllTables {
		var n int
		err := a.db.QueryRow("SELECT COUNT(*) FROM "+string(table)+" WHERE run_id = ? AND tick < ?", a.runID, tick).Scan(&n)
		if err != nil {
			a.t.Fatalf("Failed to query %s: %v", table, err)
		}
		if n != 0 {
			a.t.Errorf("Expected no %s rows before tick %d, found %d", table, tick, n)
		}
	}
}

func (a *DBAsserts) strings(query string) []string {
	rows, err := a.db.Query(query, a.runID)
	if err != nil {
		a.t.Fatalf("Failed to query: %v", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			a.t.Fatalf("Failed to scan: %v", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		a.t.Fatalf("Failed to read rows: %v", err)
	}
	return out
}

func (a *DBAsserts) assertEqual(what string, expected, got []string) {
	a.t.Helper()
	if len(expected) != len(got) {
		a.t.Errorf("Expected %s %v, got %v", what, expected, got)
		return
	}
	for i := range expected {
		if expected[i] != got[i] {
			a.t.Errorf("Expected %s %v, got %v", what, expected, got)
			return
		}
	}
}
