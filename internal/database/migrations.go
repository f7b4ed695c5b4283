package database

import (
	"context"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations must stay ordered with contiguous versions from 1.
var migrations = []migration{
	{1, "casts", migrationV1Casts},
	{2, "stroke_counts", migrationV2StrokeCounts},
}

func latestVersion() int {
	return migrations[len(migrations)-1].version
}

// migrationV1Casts records every divination cast.
//
// The three symbol names and two relation labels are stored denormalised so a
// cast stays readable if the symbol table is later edited.
const migrationV1Casts = `
CREATE TABLE IF NOT EXISTS casts (
    id TEXT PRIMARY KEY,

    -- numbers | date | characters
    method TEXT NOT NULL CHECK (method IN ('numbers', 'date', 'characters')),

    input1 INTEGER NOT NULL CHECK (input1 > 0),
    input2 INTEGER NOT NULL CHECK (input2 > 0),
    input3 INTEGER NOT NULL CHECK (input3 > 0),

    initial_symbol TEXT NOT NULL,
    middle_symbol TEXT NOT NULL,
    final_symbol TEXT NOT NULL,

    -- 生 | 克 | 无
    relation1 TEXT NOT NULL,
    relation2 TEXT NOT NULL,

    -- Source text for character casts, lunar date for date casts.
    source TEXT,
    question TEXT,

    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_casts_created_at ON casts(created_at);
CREATE INDEX IF NOT EXISTS idx_casts_method ON casts(method);
`

// migrationV2StrokeCounts holds the imported stroke dictionary.
const migrationV2StrokeCounts = `
CREATE TABLE IF NOT EXISTS stroke_counts (
    character TEXT PRIMARY KEY,
    strokes INTEGER NOT NULL CHECK (strokes > 0),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// SchemaVersion returns the highest applied migration, or 0 for a fresh
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	if _, err := db.ExecContext(ctx, createSchemaMigrations); err != nil {
		return 0, fmt.Errorf("create schema_migrations table: %w", err)
	}
	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the current schema version in a
// single transaction and returns how many were applied.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	err = db.WithTx(ctx, func(tx *Tx) error {
		for _, m := range migrations {
			if m.version <= current {
				continue
			}
			db.logger.Info("applying migration",
				slog.Int("version", m.version),
				slog.String("name", m.name),
			)
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("execute migration %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
				m.version, m.name,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", m.version, err)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Debug("migrations complete",
		slog.Int("applied", applied),
		slog.Int("version", latestVersion()),
	)
	return applied, nil
}
