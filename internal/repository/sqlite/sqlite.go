// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. No separate database server to install, configure, or manage.
// Perfect for single-server deployments, development, and testing
// (":memory:" gives each test a throwaway database).
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: the driver's init() registers itself with
	// database/sql under the name "sqlite".
	_ "modernc.org/sqlite"

	"github.com/yutosuda/url-shortener/internal/shortcode"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
//
// It also owns the short-code Generator: allocation and insertion have to
// happen together (see url.go), so the generator lives next to the table
// that enforces uniqueness.
type DB struct {
	conn  *sql.DB
	codes *shortcode.Generator
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/url_shortener.db" → file-based database (persistent)
//   - ":memory:"              → in-memory database (tests, lost on close)
//
// sql.Open does NOT actually connect — it creates a pool manager. We Ping
// immediately so a bad path or permissions problem surfaces here, not on
// the first query.
func New(dbPath string, codes *shortcode.Generator) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SINGLE WRITER:
	// SQLite allows exactly one writer at a time. Capping the pool at one
	// connection serializes our transactions at the pool level instead of
	// surfacing SQLITE_BUSY under concurrent redirects, and keeps
	// ":memory:" databases coherent (each new pool connection would
	// otherwise open its own empty in-memory database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) allows readers to proceed while a write is
	// in flight — important for a server where redirects are mostly reads.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// clicks.url_id references urls.id, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	// Bound waits on the database lock so a stuck writer surfaces as an
	// error instead of hanging the request indefinitely.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	if codes == nil {
		codes = shortcode.New(shortcode.DefaultLength)
	}

	db := &DB{conn: conn, codes: codes}

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

// Ping reports whether the database is reachable. Used by /health.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup; for this schema's churn rate a migration tracker
// would be overkill.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS urls (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			original_url TEXT NOT NULL,
			short_code   TEXT NOT NULL UNIQUE,
			click_count  INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_urls_created_at ON urls(created_at);
		CREATE INDEX IF NOT EXISTS idx_urls_click_count ON urls(click_count);
	`)
	if err != nil {
		return fmt.Errorf("creating urls table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS clicks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			url_id     INTEGER NOT NULL REFERENCES urls(id),
			clicked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			user_agent TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			referrer   TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_clicks_url_id ON clicks(url_id);
	`)
	if err != nil {
		return fmt.Errorf("creating clicks table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
//
// modernc.org/sqlite wraps SQLITE_CONSTRAINT_UNIQUE in its own error type;
// matching on the canonical message text keeps us off the driver's
// internal API. The message is stable ("UNIQUE constraint failed: <table>.<col>").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
