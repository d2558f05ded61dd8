// Package journal keeps a local SQLite record of transactions that were
// successfully posted to the tracking service. The service's account
// history is authoritative; the journal only serves local inspection.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"babytrack/internal/model"
)

// Journal is an append-only local log of posted transactions.
type Journal struct {
	db *sql.DB
}

// Entry is one posted transaction.
type Entry struct {
	ObjectID   string
	ObjectType string
	Baby       string
	SyncID     int64
	RecordedAt time.Time
	Payload    string // the JSON document that was posted, pre-base64
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		object_id   TEXT PRIMARY KEY,
		object_type TEXT NOT NULL,
		baby        TEXT NOT NULL,
		sync_id     INTEGER NOT NULL,
		recorded_at DATETIME NOT NULL,
		payload     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_recorded_at ON transactions(recorded_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append records one posted transaction. Object ids are unique per post,
// so a replayed operation never collides here.
func (j *Journal) Append(event model.Event, syncID int64, payload []byte) error {
	head := event.Head()
	_, err := j.db.Exec(
		"INSERT INTO transactions (object_id, object_type, baby, sync_id, recorded_at, payload) VALUES (?, ?, ?, ?, ?, ?)",
		head.ObjectID, model.ObjectType(event), head.Baby.Name, syncID,
		head.Timestamp.UTC(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		"SELECT object_id, object_type, baby, sync_id, recorded_at, payload FROM transactions ORDER BY recorded_at DESC, sync_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ObjectID, &e.ObjectType, &e.Baby, &e.SyncID, &e.RecordedAt, &e.Payload); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: rows: %w", err)
	}
	return entries, nil
}
