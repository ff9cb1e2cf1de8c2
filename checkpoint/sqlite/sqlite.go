// Package sqlite provides a durable core.Checkpointer backed by an embedded
// SQLite database (pure Go driver, no cgo). Threads and messages are stored
// in separate tables; message payloads are serialized as JSON so the schema
// stays stable as the message type evolves.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/movoss/agentloop/core"
	_ "modernc.org/sqlite"
)

// Store is a Checkpointer persisting threads to a SQLite database file.
// Safe for concurrent use; the connection pool is capped at one connection,
// which SQLite handles best for mixed read/write workloads.
type Store struct {
	db *sql.DB
}

var _ core.Checkpointer = (*Store)(nil)

// Open opens (creating if necessary) the database at path and initializes
// the schema. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

const schemaThreads = `
CREATE TABLE IF NOT EXISTS threads (
	id TEXT PRIMARY KEY,
	state_json TEXT,
	metadata_json TEXT,
	created_at DATETIME,
	updated_at DATETIME
)`

const schemaMessages = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	thread_id TEXT,
	role TEXT,
	payload_json TEXT,
	created_at DATETIME,
	FOREIGN KEY(thread_id) REFERENCES threads(id) ON DELETE CASCADE
)`

const schemaMessagesIndex = `
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, created_at)`

func initSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	for _, stmt := range []string{schemaThreads, schemaMessages, schemaMessagesIndex} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Create forces the creation (or reset) of a thread with the given id.
func (s *Store) Create(threadID string) (*core.Thread, error) {
	t := core.NewThread(threadID)
	stateJSON, metaJSON, err := encodeThread(t)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM messages WHERE thread_id = ?`, threadID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(
		`INSERT INTO threads (id, state_json, metadata_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state_json = excluded.state_json,
		 metadata_json = excluded.metadata_json, updated_at = excluded.updated_at`,
		t.ID, stateJSON, metaJSON, timeToDB(t.Created), timeToDB(t.Updated),
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the thread for the id, creating it lazily when absent.
func (s *Store) Get(threadID string) (*core.Thread, error) {
	row := s.db.QueryRow(
		`SELECT id, state_json, metadata_json, created_at, updated_at FROM threads WHERE id = ?`,
		threadID,
	)

	var id, stateJSON, metaJSON string
	var created, updated string
	if err := row.Scan(&id, &stateJSON, &metaJSON, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return s.Create(threadID)
		}
		return nil, err
	}

	t := core.NewThread(id)
	if err := json.Unmarshal([]byte(stateJSON), &t.State); err != nil {
		return nil, fmt.Errorf("corrupt thread state for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &t.Metadata); err != nil {
		return nil, fmt.Errorf("corrupt thread metadata for %s: %w", id, err)
	}
	t.Created = timeFromDB(created)
	t.Updated = timeFromDB(updated)

	msgs, err := s.loadMessages(threadID)
	if err != nil {
		return nil, err
	}
	t.Append(msgs...)
	t.Updated = timeFromDB(updated)

	return t, nil
}

// Append adds messages to the thread's history, creating the thread lazily.
func (s *Store) Append(threadID string, msgs ...core.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := s.ensureThread(threadID); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO messages (id, thread_id, role, payload_json, created_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID, threadID, string(m.Role), string(payload), timeToDB(m.Timestamp),
		); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		`UPDATE threads SET updated_at = ? WHERE id = ?`, timeToDB(time.Now().UTC()), threadID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ApplyStateDelta merges a key/value delta into the persisted thread state.
func (s *Store) ApplyStateDelta(threadID string, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}
	if err := s.ensureThread(threadID); err != nil {
		return err
	}

	row := s.db.QueryRow(`SELECT state_json FROM threads WHERE id = ?`, threadID)
	var stateJSON string
	if err := row.Scan(&stateJSON); err != nil {
		return err
	}

	state := map[string]any{}
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return fmt.Errorf("corrupt thread state for %s: %w", threadID, err)
	}
	for k, v := range delta {
		state[k] = v
	}
	merged, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`UPDATE threads SET state_json = ?, updated_at = ? WHERE id = ?`,
		string(merged), timeToDB(time.Now().UTC()), threadID,
	)
	return err
}

// Delete removes the thread and its messages.
func (s *Store) Delete(threadID string) error {
	_, err := s.db.Exec(`DELETE FROM threads WHERE id = ?`, threadID)
	return err
}

func (s *Store) ensureThread(threadID string) error {
	row := s.db.QueryRow(`SELECT 1 FROM threads WHERE id = ?`, threadID)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		_, err = s.Create(threadID)
		return err
	}
	return err
}

func (s *Store) loadMessages(threadID string) ([]core.Message, error) {
	rows, err := s.db.Query(
		`SELECT payload_json FROM messages WHERE thread_id = ? ORDER BY created_at, rowid`,
		threadID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var m core.Message
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("corrupt message in thread %s: %w", threadID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func encodeThread(t *core.Thread) (stateJSON, metaJSON string, err error) {
	sb, err := json.Marshal(t.StateSnapshot())
	if err != nil {
		return "", "", err
	}
	mb, err := json.Marshal(t.Metadata)
	if err != nil {
		return "", "", err
	}
	return string(sb), string(mb), nil
}

// Fixed-width layout: RFC3339Nano trims trailing fractional zeros, which
// breaks lexicographic ordering for timestamps on a whole second.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timeToDB(t time.Time) string { return t.UTC().Format(dbTimeLayout) }

func timeFromDB(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
