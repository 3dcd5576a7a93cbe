// Package db owns the SQLite store handle, the authoritative schema, and
// migrations. A store is always selected explicitly by path and threaded
// through the wiring; there is no ambient "current database".
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS bounds how long a connection waits on the store's native
// lock before surfacing a busy error.
const busyTimeoutMS = 5000

// Open opens the SQLite database at path, creating the parent directory if
// needed, and runs pending migrations. Callers own the returned handle and
// must Close it.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", path, busyTimeoutMS)
	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// OpenMemory opens a fresh in-memory database with the schema applied.
// Used by tests and by the ephemeral profile.
func OpenMemory() (*sql.DB, error) {
	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// A pooled second connection would see its own empty :memory: database.
	database.SetMaxOpenConns(1)
	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return database, nil
}
