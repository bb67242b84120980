// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary builds without CGo and
// cross-compiles like any other Go program.
//
// CONCURRENCY:
// SQLite allows one writer at a time. The pool is capped at a single
// connection so concurrent session writes queue inside database/sql instead
// of failing with SQLITE_BUSY, and every transaction sees the previous one's
// committed problemCount.
//
// TIMESTAMPS:
// Times are stored as INTEGER unix nanoseconds in UTC. That keeps ORDER BY
// exact; driver-formatted DATETIME text has a variable fractional part and
// does not sort reliably.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the user, project and
// session repositories.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/practice.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: serialises writers, and keeps ":memory:" a single
	// database instead of one per pooled connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by /health.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			external_subject  TEXT NOT NULL UNIQUE,
			email             TEXT NOT NULL,
			display_name      TEXT NOT NULL DEFAULT '',
			handle            TEXT,
			tier              INTEGER,
			rating            INTEGER,
			last_tier_sync_at INTEGER,
			last_login_at     INTEGER NOT NULL,
			created_at        INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id            TEXT PRIMARY KEY,
			owner_id      TEXT NOT NULL REFERENCES users(id),
			name          TEXT NOT NULL,
			language      TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			problem_count INTEGER NOT NULL DEFAULT 0 CHECK (problem_count >= 0),
			created_at    INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_owner_created ON projects(owner_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id             TEXT PRIMARY KEY,
			project_id     TEXT NOT NULL REFERENCES projects(id),
			owner_id       TEXT NOT NULL,
			problem_id     INTEGER NOT NULL,
			title          TEXT NOT NULL DEFAULT '',
			tags           TEXT NOT NULL DEFAULT '[]',
			time_spent     INTEGER NOT NULL CHECK (time_spent >= 0),
			submitted_code TEXT NOT NULL DEFAULT '',
			ai_feedback    TEXT,
			is_success     INTEGER NOT NULL DEFAULT 0,
			created_at     INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_project_created ON sessions(project_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	return nil
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
