// Package store provides persistent storage for the front desk using SQLite.
//
// # Architecture
//
// Persistence is split into small interfaces, one per concern:
//
//   - UserStore: desk operator accounts and first-run seeding
//   - SessionStore: server-side login sessions
//   - VisitorStore: the visitor register (check-in / check-out)
//   - ResidentStore: the resident directory
//   - SecurityLogStore: guard shift log
//   - DashboardStore: aggregate figures for the landing page
//
// Store composes them. SQLiteStore implements all of them in a single
// struct backed by sqlx.
//
// # Drivers
//
// Two database/sql drivers are linked in:
//
//   - "sqlite" (modernc.org/sqlite): pure Go, the default
//   - "sqlite3" (github.com/mattn/go-sqlite3): cgo
//
// Select one with WithDriver. Both read the same file format.
//
// # Timestamps
//
// Timestamps are stored as TEXT in server-local wall time using TimeLayout
// ("2006-01-02 15:04:05"). Lexicographic order is chronological order, and
// SQLite's date() function yields the local calendar day, which is what the
// dashboard's "today" count compares against. Lists that sort by a timestamp
// break ties on id descending so rows written within the same second keep
// insertion order.
//
// # Closing records
//
// CheckoutVisitor and EndShift are single conditional UPDATE statements
// guarded by "IS NULL" on the closing column. Repeating either call, even
// concurrently, leaves the first recorded time in place.
//
// # Validation
//
// Create operations trim every text field and return a *ValidationError
// when a required field is empty; nothing is written in that case.
// ValidationError messages are meant for display.
//
// # Schema
//
// The schema is created with CREATE TABLE IF NOT EXISTS on every open and is
// forward-only. There are no migrations.
//
// # Thread Safety
//
// All methods are safe for concurrent use. SQLite runs in WAL mode with a
// busy timeout so readers do not block the single writer.
package store
