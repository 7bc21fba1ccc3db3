// Package store persists a history of link sessions — when the engine
// connected, when it dropped, and its final stats snapshot — in SQLite,
// with a schema-version table and an automatic migration on Open.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding the link_sessions table
// and its schema-version bookkeeping; see schema.go and sessions.go for
// the link-specific queries built on top of it.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the session-history database at path, bringing
// its schema up to date before returning. An empty path resolves to
// os.UserConfigDir()/squid/squid.db, so a host with no "-db" flag still
// gets a session history instead of silently running without one.
func Open(path string) (*DB, error) {
	if path == "" {
		var err error
		path, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine database path: %w", err)
		}
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode lets the HTTP sessions endpoint read the file while session
	// rows are being written without blocking each other on every write.
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}

	if err := db.Migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	return db, nil
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Tx runs fn inside a transaction, committing on a nil return and rolling
// back otherwise. Used by schema.go's migration step and can be reused by
// any future multi-statement session query.
func (db *DB) Tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// defaultDBPath resolves to the session database's default location under
// the OS-appropriate user config directory (honoring $XDG_CONFIG_HOME on
// Linux, as os.UserConfigDir documents).
func defaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "squid", "squid.db"), nil
}
