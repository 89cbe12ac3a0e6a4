// Package history provides the SQLite-backed index of tracked items and
// sync runs. The markdown files under tracking/ remain the source of truth;
// this database is derived state for the status, serve, and mcp surfaces.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	adapter   TEXT NOT NULL,
	id        TEXT NOT NULL,
	title     TEXT NOT NULL DEFAULT '',
	status    TEXT NOT NULL DEFAULT '',
	path      TEXT NOT NULL DEFAULT '',
	cursor    TEXT NOT NULL DEFAULT '',
	synced_at DATETIME,
	PRIMARY KEY (adapter, id)
);

CREATE INDEX IF NOT EXISTS idx_items_path ON items(path);

CREATE TABLE IF NOT EXISTS runs (
	run_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	adapter    TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	succeeded  INTEGER NOT NULL DEFAULT 0,
	failed     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_adapter ON runs(adapter, started_at);
`

// DB wraps a sql.DB with history-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
