// Package sqlite implements the repository interfaces on an embedded SQLite
// database.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no CGo, no C
// toolchain, cross-compiles everywhere Go does. The blank import below
// registers it with database/sql under the driver name "sqlite".
//
// WAL mode is enabled so reads proceed concurrently with a write, which
// matters once the message endpoints and the presence broadcasts hit the
// database from separate requests at the same time.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB owns the sql.DB pool and the schema. The per-aggregate stores
// (UserStore, MessageStore) share this pool; the server closes it on
// shutdown.
type DB struct {
	conn *sql.DB
}

// Users returns the user store backed by this pool.
func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// Messages returns the message store backed by this pool.
func (db *DB) Messages() *MessageStore {
	return &MessageStore{conn: db.conn}
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent
// across restarts.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			full_name     TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			profile_pic   TEXT NOT NULL DEFAULT '',
			verified      INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id          TEXT PRIMARY KEY,
			sender_id   TEXT NOT NULL REFERENCES users(id),
			receiver_id TEXT NOT NULL REFERENCES users(id),
			text        TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_messages_pair
			ON messages(sender_id, receiver_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_messages_receiver
			ON messages(receiver_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}
