// Package sqlite provides the SQLite-backed implementations of
// statussync.SyncStore and statussync.BalanceStore.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the synchronizer writes while dashboard queries may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/marketplace-orders/internal/order"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup: the two denormalized
// projections of order status.
const schema = `
-- One row per order: the fast-lookup copy of the order's current status.
CREATE TABLE IF NOT EXISTS order_sync (
    order_id      TEXT PRIMARY KEY,
    order_status  TEXT NOT NULL
);

-- Vendor balance ledger. Order rows are keyed by (trn_id = order id,
-- trn_type = 'order'); other trn_types (withdrawals, refunds) belong to
-- other subsystems and are never touched here.
CREATE TABLE IF NOT EXISTS vendor_balance (
    trn_id    TEXT NOT NULL,
    trn_type  TEXT NOT NULL,
    status    TEXT NOT NULL,
    PRIMARY KEY (trn_id, trn_type)
);
`

// Store holds both projection tables in one SQLite file. It satisfies
// statussync.SyncStore and statussync.BalanceStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	store, err := sqlite.Open("./data/projections.db")
func Open(path string) (*Store, error) {
	// WAL enables concurrent readers. busy_timeout waits for locks instead
	// of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertStatus writes the order's status row, inserting or overwriting.
func (s *Store) UpsertStatus(ctx context.Context, orderID string, status order.Status) error {
	const q = `
		INSERT INTO order_sync (order_id, order_status)
		VALUES (?, ?)
		ON CONFLICT (order_id) DO UPDATE SET order_status = excluded.order_status`

	if _, err := s.db.ExecContext(ctx, q, orderID, string(order.Normalize(status))); err != nil {
		return fmt.Errorf("sqlite: upsert sync row for %q: %w", orderID, err)
	}
	return nil
}

// Status returns the projected status for an order, or order.ErrNotFound.
func (s *Store) Status(ctx context.Context, orderID string) (order.Status, error) {
	const q = `SELECT order_status FROM order_sync WHERE order_id = ?`

	var status string
	err := s.db.QueryRowContext(ctx, q, orderID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", order.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: read sync row for %q: %w", orderID, err)
	}
	return order.Status(status), nil
}

// UpdateStatus writes the ledger row for (trnID, trnType), inserting or
// overwriting.
func (s *Store) UpdateStatus(ctx context.Context, trnID, trnType string, status order.Status) error {
	const q = `
		INSERT INTO vendor_balance (trn_id, trn_type, status)
		VALUES (?, ?, ?)
		ON CONFLICT (trn_id, trn_type) DO UPDATE SET status = excluded.status`

	if _, err := s.db.ExecContext(ctx, q, trnID, trnType, string(order.Normalize(status))); err != nil {
		return fmt.Errorf("sqlite: update balance row for %q/%q: %w", trnID, trnType, err)
	}
	return nil
}

// BalanceStatus returns the ledger status for (trnID, trnType), or
// order.ErrNotFound.
func (s *Store) BalanceStatus(ctx context.Context, trnID, trnType string) (order.Status, error) {
	const q = `SELECT status FROM vendor_balance WHERE trn_id = ? AND trn_type = ?`

	var status string
	err := s.db.QueryRowContext(ctx, q, trnID, trnType).Scan(&status)
	if err == sql.ErrNoRows {
		return "", order.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: read balance row for %q/%q: %w", trnID, trnType, err)
	}
	return order.Status(status), nil
}
