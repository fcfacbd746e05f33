// Package ledger provides the SQLite-backed record of packages this tool
// has built and installed.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS packages (
	name           TEXT PRIMARY KEY,
	version        TEXT NOT NULL DEFAULT '',
	installed_date TIMESTAMP NOT NULL,
	last_update    TIMESTAMP NOT NULL,
	is_git         INTEGER NOT NULL DEFAULT 0
);
`

// Record is one tracked package. Version is opaque to ordering and is
// only compared for equality against upstream.
type Record struct {
	Name        string
	Version     string
	InstalledAt time.Time
	LastUpdate  time.Time
	IsRolling   bool
}

// Store defines the ledger operations. Consumers should depend on this
// interface rather than the concrete *DB type to facilitate testing with
// fakes.
type Store interface {
	Upsert(r Record) error
	Get(name string) (*Record, error)
	Delete(name string) error
	ListAll() ([]Record, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with ledger-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite ledger and applies the schema.
// WAL mode plus a busy timeout keeps the handle safe for concurrent
// workers within one process: readers proceed while writes serialize.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Upsert inserts or replaces the record for r.Name.
func (db *DB) Upsert(r Record) error {
	_, err := db.conn.Exec(`
		INSERT INTO packages (name, version, installed_date, last_update, is_git)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version        = excluded.version,
			installed_date = excluded.installed_date,
			last_update    = excluded.last_update,
			is_git         = excluded.is_git
	`, r.Name, r.Version, r.InstalledAt, r.LastUpdate, boolToInt(r.IsRolling))
	if err != nil {
		return fmt.Errorf("ledger: upsert %s: %w", r.Name, err)
	}
	return nil
}

// Get returns the record for name, or an error wrapping apperr.ErrNotFound.
func (db *DB) Get(name string) (*Record, error) {
	row := db.conn.QueryRow(`
		SELECT name, version, installed_date, last_update, is_git
		FROM packages WHERE name = ?
	`, name)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger: package %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get %s: %w", name, err)
	}
	return rec, nil
}

// Delete removes the record for name. Deleting an untracked name is a no-op.
func (db *DB) Delete(name string) error {
	if _, err := db.conn.Exec(`DELETE FROM packages WHERE name = ?`, name); err != nil {
		return fmt.Errorf("ledger: delete %s: %w", name, err)
	}
	return nil
}

// ListAll returns every tracked package ordered by name.
func (db *DB) ListAll() ([]Record, error) {
	rows, err := db.conn.Query(`
		SELECT name, version, installed_date, last_update, is_git
		FROM packages ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ledger: scan row: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var r Record
	var isGit int
	if err := scan(&r.Name, &r.Version, &r.InstalledAt, &r.LastUpdate, &isGit); err != nil {
		return nil, err
	}
	r.IsRolling = isGit != 0
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
