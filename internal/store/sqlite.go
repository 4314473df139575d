// ABOUTME: SQLite implementation of the Store interface using sqlx over modernc.org/sqlite or mattn/go-sqlite3
// ABOUTME: Opens the database file, creates the schema and provides shared timestamp helpers

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by NewSQLiteStore
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCGO     = "sqlite3" // github.com/mattn/go-sqlite3
)

// TimeLayout is how timestamps are stored: server-local wall time, which
// sorts lexicographically and works with SQLite's date() function.
const TimeLayout = "2006-01-02 15:04:05"

// dateLayout matches SQLite's date() output
const dateLayout = "2006-01-02"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a SQLiteStore
type Option func(*storeOptions)

type storeOptions struct {
	driver string
	now    func() time.Time
	logger *slog.Logger
}

// WithDriver selects the database/sql driver ("sqlite" or "sqlite3").
func WithDriver(name string) Option {
	return func(o *storeOptions) {
		if name != "" {
			o.driver = name
		}
	}
}

// WithClock replaces time.Now for every timestamp the store writes.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSQLiteStore opens (or creates) the database at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := storeOptions{
		driver: DriverModernc,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open(o.driver, dataSourceName(o.driver, path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite has a single writer. One connection serializes writes inside the
	// process (and keeps :memory: to one database); busy_timeout covers
	// other processes such as the adduser command.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		now:    o.now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path, "driver", o.driver)
	return s, nil
}

// dataSourceName adds the busy timeout to the DSN for the selected driver.
func dataSourceName(driver, path string) string {
	if path == ":memory:" {
		return path
	}
	switch driver {
	case DriverCGO:
		return path + "?_busy_timeout=5000"
	default:
		return path + "?_pragma=busy_timeout(5000)"
	}
}

// createSchema creates the database tables if they don't exist.
// The schema is forward-only; there are no migrations.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT
		);

		CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT,
			flat_no TEXT NOT NULL,
			purpose TEXT,
			vehicle_no TEXT,
			check_in TEXT NOT NULL,
			check_out TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_visitors_check_in ON visitors(check_in);

		CREATE TABLE IF NOT EXISTS residents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			flat_no TEXT NOT NULL,
			phone TEXT,
			email TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_residents_flat_no ON residents(flat_no);

		CREATE TABLE IF NOT EXISTS security_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guard_name TEXT NOT NULL,
			shift_start TEXT NOT NULL,
			shift_end TEXT,
			notes TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_security_logs_shift_start ON security_logs(shift_start);

		-- Server-side login sessions (cookie holds the id)
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			username TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ping verifies the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// timestamp returns the current store time in storage format
func (s *SQLiteStore) timestamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.In(time.Local).Format(TimeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, value, time.Local)
}

// parseNullTime converts a nullable timestamp column
func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}
