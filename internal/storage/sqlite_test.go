package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveAndLookupReplay(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveReplay("warmup", "/tmp/warmup.yaml", 120)
	if err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("ID %q is not a UUID: %v", id, err)
	}

	e, err := store.ReplayByName("warmup")
	if err != nil {
		t.Fatalf("ReplayByName() failed: %v", err)
	}
	if e == nil {
		t.Fatal("expected an entry")
	}
	if e.ID != id || e.Path != "/tmp/warmup.yaml" || e.Frames != 120 {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestReplayByNameMissing(t *testing.T) {
	store := openTestStore(t)

	e, err := store.ReplayByName("nope")
	if err != nil {
		t.Fatalf("ReplayByName() failed: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil, got %+v", e)
	}
}

func TestSaveReplayOverwritesName(t *testing.T) {
	store := openTestStore(t)

	first, err := store.SaveReplay("run", "/a.yaml", 10)
	if err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}
	second, err := store.SaveReplay("run", "/b.yaml", 20)
	if err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}
	if first != second {
		t.Errorf("re-saving a name should keep its ID: %s != %s", first, second)
	}

	entries, err := store.RecentReplays(10)
	if err != nil {
		t.Fatalf("RecentReplays() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/b.yaml" || entries[0].Frames != 20 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestSaveReplayRejectsEmptyName(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveReplay("", "/a.yaml", 1); err == nil {
		t.Error("empty name should fail")
	}
}

func TestRecentReplaysOrderAndLimit(t *testing.T) {
	store := openTestStore(t)

	for _, name := range []string{"one", "two", "three"} {
		if _, err := store.SaveReplay(name, "/"+name+".yaml", 1); err != nil {
			t.Fatalf("SaveReplay(%s) failed: %v", name, err)
		}
	}

	entries, err := store.RecentReplays(2)
	if err != nil {
		t.Fatalf("RecentReplays() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	// Same-second inserts fall back to insertion order, newest first.
	if entries[0].Name != "three" || entries[1].Name != "two" {
		t.Errorf("unexpected order: %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestDeleteReplay(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveReplay("gone", "/gone.yaml", 5); err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}

	deleted, err := store.DeleteReplay("gone")
	if err != nil || !deleted {
		t.Fatalf("DeleteReplay() = %v, %v", deleted, err)
	}
	deleted, err = store.DeleteReplay("gone")
	if err != nil || deleted {
		t.Errorf("second DeleteReplay() = %v, %v", deleted, err)
	}

	if e, _ := store.ReplayByName("gone"); e != nil {
		t.Error("deleted replay is still indexed")
	}
}

func TestStorePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveReplay("kept", "/kept.yaml", 3); err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if e, err := store.ReplayByName("kept"); err != nil || e == nil {
		t.Errorf("replay did not survive reopen: %v, %v", e, err)
	}
}

func TestReplayEntryAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	e := ReplayEntry{CreatedAt: now.Add(-3 * time.Hour)}
	if got := e.Age(now); !strings.HasSuffix(got, "ago") || !strings.Contains(got, "3 hours") {
		t.Errorf("Age() = %q", got)
	}

	if got := (ReplayEntry{}).Age(now); got != "unknown" {
		t.Errorf("zero Age() = %q, want unknown", got)
	}
}
