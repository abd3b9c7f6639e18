package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE IF NOT EXISTS meta (
				key TEXT PRIMARY KEY,
				value TEXT
			);

			CREATE TABLE IF NOT EXISTS projects (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo_root TEXT UNIQUE NOT NULL,
				created_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 2,
		Name:    "add_runs_and_jumps",
		SQL: `
			-- One row per tag-file generation or load
			CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				project_id INTEGER NOT NULL,
				kind TEXT NOT NULL,
				command TEXT NOT NULL DEFAULT '',
				started_at TEXT NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				lines INTEGER NOT NULL DEFAULT 0,
				bytes INTEGER NOT NULL DEFAULT 0,
				error TEXT NOT NULL DEFAULT '',
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_runs_project_started ON runs(project_id, started_at);

			-- Navigation targets the user jumped to
			CREATE TABLE IF NOT EXISTS jumps (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id INTEGER NOT NULL,
				query TEXT NOT NULL DEFAULT '',
				symbol TEXT NOT NULL,
				kind TEXT NOT NULL DEFAULT '',
				path TEXT NOT NULL,
				line INTEGER NOT NULL,
				jumped_at TEXT NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_jumps_project_jumped ON jumps(project_id, jumped_at);
		`,
	},
}

// Migrate runs all pending versioned migrations inside transactions.
// It creates the schema_migrations table if it does not exist and backfills
// version 1 for databases whose base tables were created without a record.
func Migrate(d *sql.DB) error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name    TEXT NOT NULL,
			applied_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	if err := backfillV1(d); err != nil {
		return fmt.Errorf("backfill v1: %w", err)
	}

	current, err := CurrentVersion(d)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(d, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func applyMigration(d *sql.DB, m migration) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

// backfillV1 records version 1 without re-running its DDL when the meta
// table is already present.
func backfillV1(d *sql.DB) error {
	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = 1`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var name string
	err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='meta'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = d.Exec(
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		1, "initial_schema", time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// CurrentVersion returns the highest applied migration version (0 if none).
func CurrentVersion(d *sql.DB) (int, error) {
	var v int
	err := d.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}

// LatestVersion returns the latest migration version defined in code.
func LatestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
