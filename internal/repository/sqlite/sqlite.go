// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. No separate server to install, configure, or manage. For a
// single-node shortener that's plenty, and ":memory:" gives tests a fresh
// real database in microseconds.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works.
//
// UNIQUENESS IS ENFORCED HERE:
// username, email, and short_code all carry UNIQUE constraints. Concurrent
// conflicting writes are serialized by the database, not by application
// locks — the repository's job is to classify the resulting constraint
// errors into domain errors the layers above understand.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool. The repository implementations hang off
// the Users() and Links() accessors; both share the same pool.
type DB struct {
	conn *sql.DB
}

// UserDB implements repository.UserRepository.
type UserDB struct {
	conn *sql.DB
}

// LinkDB implements repository.LinkRepository.
type LinkDB struct {
	conn *sql.DB
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Links returns the link repository backed by this database.
func (db *DB) Links() *LinkDB {
	return &LinkDB{conn: db.conn}
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/linklair.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests; lost on close)
//
// sql.Open only creates a pool manager; Ping forces a real connection so a
// bad path fails here instead of on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection — with the default pool,
	// a second connection would see a brand-new empty database. Pin the
	// pool to a single connection; the pool then serializes access.
	if strings.Contains(dbPath, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server sharing one pool across requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them ON so
	// links.user_id can only reference an existing user.
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

// Close closes the connection pool. Callers should defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent;
// both tables are insert-only so there are no ALTER migrations to track.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// user_id is nullable: a NULL row is an unowned link. The foreign key
	// only bites when an owner is set.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS links (
			id           TEXT PRIMARY KEY,
			original_url TEXT NOT NULL,
			short_code   TEXT NOT NULL UNIQUE,
			user_id      TEXT REFERENCES users(id),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_links_user_id ON links(user_id);
		CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating links table: %w", err)
	}

	return nil
}

// uniqueViolation reports whether err is a UNIQUE-constraint failure and, if
// so, which constraint tripped (as "table.column", e.g. "users.email").
//
// modernc's driver reports constraint failures as *sqlite.Error with the
// extended result code SQLITE_CONSTRAINT_UNIQUE and a message naming the
// constraint ("UNIQUE constraint failed: users.email"). Raw storage errors
// never leave this package as-is — callers reclassify them into domain
// errors.
func uniqueViolation(err error) (string, bool) {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return "", false
	}
	if serr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return "", false
	}

	msg := serr.Error()
	const marker = "UNIQUE constraint failed: "
	if i := strings.Index(msg, marker); i >= 0 {
		constraint := msg[i+len(marker):]
		// Trim anything after the constraint name (driver appends the code).
		if j := strings.IndexAny(constraint, " ("); j >= 0 {
			constraint = constraint[:j]
		}
		return constraint, true
	}
	return "", true
}
