// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
//
// The PasswordService is injected so the store can hash plaintext passwords
// at create time — the one place a plaintext credential is allowed to enter
// the storage layer, and it leaves as a bcrypt hash.
type DB struct {
	conn      *sql.DB
	passwords *auth.PasswordService
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string, passwords *auth.PasswordService) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface bad paths or permissions now, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in flight — the
	// connector and the login flow hit the same table from different requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, passwords: passwords}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the users table. CREATE TABLE IF NOT EXISTS keeps it
// idempotent, so it's safe to run on every start.
//
// password_hash and google_id are both nullable on purpose: exactly one of
// them is set depending on the provider. The UNIQUE constraints are what
// turn duplicate identities into sqlite constraint errors (mapped to
// apperror.Conflict in user.go).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			name          TEXT NOT NULL DEFAULT '',
			google_id     TEXT UNIQUE,
			avatar        TEXT,
			provider      TEXT NOT NULL DEFAULT 'local',
			verified      BOOLEAN NOT NULL DEFAULT 1,
			active        BOOLEAN NOT NULL DEFAULT 1,
			last_login_at DATETIME,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
