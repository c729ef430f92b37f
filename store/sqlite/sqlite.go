/*
Package sqlite is the record store for the receivables engine.

PURPOSE:
  Persists the primary records - parties, payments, clients, visits and
  costs - and exposes the CRUD and range queries the API layer needs. The
  computed payment-health and projection views are NEVER stored here: they
  are derived data, recomputed from parties and payments on every read, so
  a payment arriving a second ago is reflected on the next dashboard load.

KEY TABLES:
  parties:        Venue-rental sales with a denormalized paid_cents sum
  payments:       Partial payments; writes keep parties.paid_cents in sync
  clients:        Leads and customers with their funnel position
  visits:         Publicly booked venue tours (slot-conflict checked)
  variable_costs: Per-party costs (flat or percent of value)
  fixed_costs:    Monthly overhead

DENORMALIZATION INVARIANT:
  parties.paid_cents always equals the sum of that party's payments.
  CreatePayment and DeletePayment adjust it inside the same SQL transaction
  as the payment row, so the two can never drift apart.

CONCURRENCY:
  sync.RWMutex, as elsewhere in this codebase; SQLite is opened in WAL mode
  so readers don't block each other.

SEE ALSO:
  - receivables: The party/payment types stored here
  - crm: Client, visit and cost types
  - api: The only consumer of this package
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode is returned when a party code is already taken.
	ErrDuplicateCode = errors.New("duplicate party code")

	// ErrClientHasParties is returned when deleting a client that still
	// has parties on record.
	ErrClientHasParties = errors.New("client has registered parties")

	// ErrSlotTaken is returned when a visit booking collides with an
	// existing visit or a party at the same time.
	ErrSlotTaken = errors.New("time slot unavailable")

	// ErrNonPositivePayment is returned for payments with value <= 0.
	// Negative payments are a contract violation at this boundary; the
	// computation layer never defends against them.
	ErrNonPositivePayment = errors.New("payment value must be positive")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed record store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the database at dbPath, creating the parent
// directory if needed. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema.
func (s *Store) migrate() error {
	schema := `
	-- Parties (venue-rental sales)
	CREATE TABLE IF NOT EXISTS parties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		client_id INTEGER NOT NULL,
		closing_date TEXT NOT NULL,
		event_date TEXT NOT NULL,
		total_value_cents INTEGER NOT NULL,
		paid_cents INTEGER NOT NULL DEFAULT 0,
		guest_count INTEGER NOT NULL DEFAULT 0,
		theme TEXT NOT NULL DEFAULT '',
		time_slot TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'agendada',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parties_client ON parties(client_id);
	CREATE INDEX IF NOT EXISTS idx_parties_event_date ON parties(event_date);
	CREATE INDEX IF NOT EXISTS idx_parties_status ON parties(status);

	-- Payments (value sums must match parties.paid_cents)
	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		party_id INTEGER NOT NULL,
		value_cents INTEGER NOT NULL,
		paid_at TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_party ON payments(party_id);

	-- Clients (leads and customers)
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL DEFAULT 'organico',
		funnel_status TEXT NOT NULL DEFAULT 'novo',
		potential_value_cents INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Visits (public bookings)
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_name TEXT NOT NULL,
		client_phone TEXT NOT NULL,
		scheduled_at TEXT NOT NULL,
		event_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'agendada',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_scheduled_at ON visits(scheduled_at);

	-- Costs
	CREATE TABLE IF NOT EXISTS variable_costs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		value_cents INTEGER NOT NULL DEFAULT 0,
		percent INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fixed_costs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		value_cents INTEGER NOT NULL DEFAULT 0,
		reference_month TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// execer matches both *sql.DB and *sql.Tx so transactional code paths can
// share the non-transactional query helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
