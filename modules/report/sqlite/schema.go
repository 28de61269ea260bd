package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT    PRIMARY KEY,
		seed        INTEGER NOT NULL,
		cars        INTEGER NOT NULL,
		started_at  TEXT    NOT NULL,
		duration_ms INTEGER NOT NULL,
		rotations   INTEGER NOT NULL,
		passed      INTEGER NOT NULL,
		congested   INTEGER NOT NULL,
		broken_down INTEGER NOT NULL,
		mean_wait   REAL    NOT NULL,
		max_wait    REAL    NOT NULL,
		cpu_percent REAL    NOT NULL DEFAULT 0,
		memory_mb   REAL    NOT NULL DEFAULT 0,
		created_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		run_id         TEXT    NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		seq            INTEGER NOT NULL,
		vehicle_id     INTEGER NOT NULL,
		arrival        TEXT    NOT NULL,
		departure      TEXT    NOT NULL,
		waited_seconds INTEGER NOT NULL,
		light_wait_ms  INTEGER NOT NULL,
		penalty_ms     INTEGER NOT NULL,
		broken_down    INTEGER NOT NULL DEFAULT 0,
		congested      INTEGER NOT NULL DEFAULT 0,
		passed         INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}

	return nil
}
