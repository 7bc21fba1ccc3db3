package store

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one forward step in the session-history schema: the
// version it brings the database to, and the DDL that gets it there.
type migration struct {
	version int
	ddl     string
}

// migrations lists every schema step in order. Adding a new one only
// requires appending an entry here; Migrate applies whatever the target
// database hasn't seen yet.
var migrations = []migration{
	{
		version: 1,
		ddl: `
-- Tracks which migrations have landed.
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- One row per connect/disconnect lifecycle of the engine.
CREATE TABLE IF NOT EXISTS link_sessions (
    id            TEXT PRIMARY KEY,
    link_name     TEXT NOT NULL DEFAULT 'default',
    started_at    TEXT NOT NULL DEFAULT (datetime('now')),
    ended_at      TEXT,
    end_reason    TEXT NOT NULL DEFAULT '',
    rx_frames     INTEGER NOT NULL DEFAULT 0,
    tx_frames     INTEGER NOT NULL DEFAULT 0,
    crc_errors    INTEGER NOT NULL DEFAULT 0,
    duplicates    INTEGER NOT NULL DEFAULT 0,
    drops         INTEGER NOT NULL DEFAULT 0,
    timeouts      INTEGER NOT NULL DEFAULT 0,
    resends       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_link_sessions_link ON link_sessions(link_name);
CREATE INDEX IF NOT EXISTS idx_link_sessions_started ON link_sessions(started_at);
`,
	},
}

// Migrate brings the database up to the newest schema version, applying
// any migration whose version is past what's already recorded. Safe to
// call on every Open: a fully migrated database is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	applied, err := db.appliedVersion(ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= applied {
			continue
		}
		if err := db.runMigration(ctx, m); err != nil {
			return fmt.Errorf("applying schema migration %d: %w", m.version, err)
		}
	}

	return nil
}

// appliedVersion reports the highest migration version already recorded,
// or 0 for a brand-new database that predates the schema_version table.
func (db *DB) appliedVersion(ctx context.Context) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = 'schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`,
	).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// runMigration executes one migration's DDL and records its version, both
// inside a single transaction so a failed step never leaves a half-applied
// schema behind.
func (db *DB) runMigration(ctx context.Context, m migration) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("running migration DDL: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_version (version) VALUES (?)`, m.version,
		); err != nil {
			return fmt.Errorf("recording migration version: %w", err)
		}
		return nil
	})
}
