// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"os"
	"testing"

	"github.com/eralp/turbonote/internal/noterepo"
	"github.com/eralp/turbonote/internal/store"
)

// TestStore creates a temporary SQLite note store that is automatically
// cleaned up.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "turbonote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRepo creates a note repository over a temporary store.
func TestRepo(t *testing.T) *noterepo.Repository {
	t.Helper()
	return noterepo.New(TestStore(t))
}
