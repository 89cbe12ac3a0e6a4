package history

import (
	"database/sql"
	"fmt"
	"time"
)

// ItemRow represents a row in the items table.
type ItemRow struct {
	Adapter  string    `json:"adapter"`
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Path     string    `json:"path"`
	Cursor   string    `json:"-"`
	SyncedAt time.Time `json:"synced_at"`
}

// RecordSync upserts an item after a successful sync, replacing every column
// including the remote cursor and sync timestamp.
func (db *DB) RecordSync(row ItemRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO items (adapter, id, title, status, path, cursor, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(adapter, id) DO UPDATE SET
			title     = excluded.title,
			status    = excluded.status,
			path      = excluded.path,
			cursor    = excluded.cursor,
			synced_at = excluded.synced_at
	`, row.Adapter, row.ID, row.Title, row.Status, row.Path, row.Cursor, row.SyncedAt)
	if err != nil {
		return fmt.Errorf("history: record sync: %w", err)
	}
	return nil
}

// Observe upserts an item seen on disk (watcher or reindex), preserving any
// stored cursor and sync timestamp.
func (db *DB) Observe(adapter, id, title, status, path string) error {
	_, err := db.conn.Exec(`
		INSERT INTO items (adapter, id, title, status, path)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(adapter, id) DO UPDATE SET
			title  = excluded.title,
			status = excluded.status,
			path   = excluded.path
	`, adapter, id, title, status, path)
	if err != nil {
		return fmt.Errorf("history: observe: %w", err)
	}
	return nil
}

// Cursor returns the stored remote cursor for an item, or empty string.
func (db *DB) Cursor(adapter, id string) (string, error) {
	var cursor string
	err := db.conn.QueryRow(`SELECT cursor FROM items WHERE adapter = ? AND id = ?`, adapter, id).Scan(&cursor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("history: cursor: %w", err)
	}
	return cursor, nil
}

// GetItem returns one item row.
func (db *DB) GetItem(adapter, id string) (*ItemRow, error) {
	row := db.conn.QueryRow(`
		SELECT adapter, id, title, status, path, cursor, COALESCE(synced_at, '0001-01-01')
		FROM items WHERE adapter = ? AND id = ?
	`, adapter, id)
	var it ItemRow
	if err := row.Scan(&it.Adapter, &it.ID, &it.Title, &it.Status, &it.Path, &it.Cursor, &it.SyncedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("history: get item: %w", err)
	}
	return &it, nil
}

// ListItems returns all items ordered by adapter then id.
func (db *DB) ListItems() ([]ItemRow, error) {
	rows, err := db.conn.Query(`
		SELECT adapter, id, title, status, path, cursor, COALESCE(synced_at, '0001-01-01')
		FROM items ORDER BY adapter, id
	`)
	if err != nil {
		return nil, fmt.Errorf("history: list items: %w", err)
	}
	defer rows.Close()

	var out []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.Adapter, &it.ID, &it.Title, &it.Status, &it.Path, &it.Cursor, &it.SyncedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteByPath removes the item whose README lives at path.
func (db *DB) DeleteByPath(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM items WHERE path = ?`, path); err != nil {
		return fmt.Errorf("history: delete by path: %w", err)
	}
	return nil
}

// DeleteItem removes one item row.
func (db *DB) DeleteItem(adapter, id string) error {
	if _, err := db.conn.Exec(`DELETE FROM items WHERE adapter = ? AND id = ?`, adapter, id); err != nil {
		return fmt.Errorf("history: delete item: %w", err)
	}
	return nil
}

// RecordRun appends one sync run to the log.
func (db *DB) RecordRun(adapter string, startedAt time.Time, succeeded, failed int) error {
	_, err := db.conn.Exec(`
		INSERT INTO runs (adapter, started_at, succeeded, failed)
		VALUES (?, ?, ?, ?)
	`, adapter, startedAt, succeeded, failed)
	if err != nil {
		return fmt.Errorf("history: record run: %w", err)
	}
	return nil
}

// LastRun returns the start time of the adapter's most recent fully
// successful run; ok is false when there is none. Used as the orchestrator's
// incremental-fetch hint.
func (db *DB) LastRun(adapter string) (time.Time, bool, error) {
	var t time.Time
	err := db.conn.QueryRow(`
		SELECT started_at FROM runs
		WHERE adapter = ? AND failed = 0
		ORDER BY started_at DESC LIMIT 1
	`, adapter).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("history: last run: %w", err)
	}
	return t, true, nil
}
