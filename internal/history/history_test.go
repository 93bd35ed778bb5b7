package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/dashql/internal/testutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(testutil.NewTestLogger(t))
	if err := store.Open(filepath.Join(t.TempDir(), "history.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return store
}

func TestStore_OpenClose(t *testing.T) {
	store := NewStore(nil)
	if err := store.Open(filepath.Join(t.TempDir(), "history.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStore_InitSchemaIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.InitSchema(); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	store := setupTestStore(t)

	entry, err := store.Record("orders by region",
		`@plan{q: "orders by region" sql: "SELECT 1"}`, true, 4, "")
	if err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected generated ID")
	}
	if entry.AskedAt.IsZero() {
		t.Fatal("expected timestamp")
	}

	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Question != "orders by region" {
		t.Errorf("question = %q", got.Question)
	}
	if !got.Success || got.RowCount != 4 {
		t.Errorf("success = %v, rowCount = %d", got.Success, got.RowCount)
	}
	if got.Error != "" {
		t.Errorf("unexpected error text %q", got.Error)
	}
}

func TestStore_RecordFailure(t *testing.T) {
	store := setupTestStore(t)

	entry, err := store.Record("bad question", "@plan{}", false, 0, "table 'nope' not found")
	if err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Success {
		t.Error("expected failure entry")
	}
	if got.Error != "table 'nope' not found" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestStore_RecentNewestFirst(t *testing.T) {
	store := setupTestStore(t)

	for _, q := range []string{"first", "second", "third"} {
		if _, err := store.Record(q, "@plan{}", true, 1, ""); err != nil {
			t.Fatalf("failed to record %q: %v", q, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Question != "third" || entries[2].Question != "first" {
		t.Errorf("unexpected order: %q, %q, %q",
			entries[0].Question, entries[1].Question, entries[2].Question)
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.Record("q", "@plan{}", true, 0, ""); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}

	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.Get("nope"); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestStore_NotOpened(t *testing.T) {
	store := NewStore(nil)

	if _, err := store.Record("q", "@plan{}", true, 0, ""); err == nil {
		t.Fatal("expected error on unopened store")
	}
	if _, err := store.Recent(5); err == nil {
		t.Fatal("expected error on unopened store")
	}
}
