// Package testutil provides shared test helpers for setting up ledgers.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/raido/internal/ledger"
)

// TestLedger creates a temporary SQLite ledger that is automatically cleaned up.
func TestLedger(t *testing.T) *ledger.DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := ledger.Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
