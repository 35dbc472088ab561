package database

import (
	"fmt"
	"strings"

	"replaytab/internal/log"
	"replaytab/internal/replay"
)

// Migration represents a database migration
type Migration struct {
	ID          int
	Description string
	SQL         string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		ID:          1,
		Description: "Runs table",
		SQL: `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	formats TEXT NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL
);`,
	},
	{
		ID:          2,
		Description: "Replay tables",
		SQL:         dataTablesSQL(),
	},
	{
		ID:          3,
		Description: "Tick indexes",
		SQL: `
-- every table is read back per run, ordered by tick
CREATE INDEX IF NOT EXISTS idx_tick_run ON tick (run_id, tick);
CREATE INDEX IF NOT EXISTS idx_player_death_run ON player_death (run_id, tick);
CREATE INDEX IF NOT EXISTS idx_weapon_fire_run ON weapon_fire (run_id, tick);
CREATE INDEX IF NOT EXISTS idx_utility_lifecycle_run ON utility_lifecycle (run_id, tick);
CREATE INDEX IF NOT EXISTS idx_bomb_lifecycle_run ON bomb_lifecycle (run_id, tick);`,
	},
}

// dataTablesSQL derives one CREATE TABLE per output table from its columns.
func dataTablesSQL() string {
	var b strings.Builder
	for _, t := range replay.AllTables {
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\trow_id INTEGER PRIMARY KEY AUTOINCREMENT,\n\trun_id TEXT NOT NULL REFERENCES runs(run_id)", t)
		for _, col := range t.Columns() {
			fmt.Fprintf(&b, ",\n\t%s %s NOT NULL", col, columnType(col))
		}
		b.WriteString("\n);\n")
	}
	return b.String()
}

// runMigrations executes all pending migrations
func (d *SQLiteDatabase) runMigrations() error {
	if err := d.ensureSchemaVersionTable(); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := d.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.ID <= currentVersion {
			continue
		}
		log.Debug("Applying migration", "id", migration.ID, "description", migration.Description)
		if err := d.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.ID, err)
		}
	}
	return nil
}

// ensureSchemaVersionTable creates the schema_version table if it doesn't exist
func (d *SQLiteDatabase) ensureSchemaVersionTable() error {
	_, err := d.db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

// SchemaVersion returns the highest applied migration.
func (d *SQLiteDatabase) SchemaVersion() (int, error) {
	var version int
	err := d.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigration applies a single migration
func (d *SQLiteDatabase) applyMigration(migration Migration) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(migration.SQL, ";") {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?);`, migration.ID); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

func stripComments(stmt string) string {
	var kept []string
	for _, line := range strings.Split(stmt, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
