package tui

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/stretch/internal/storage"
)

func TestReplaysDeleteRemovesStream(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "stretch.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()

	path := filepath.Join(dir, "warmup.yaml")
	if err := os.WriteFile(path, []byte("format: stretch-replay\nversion: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveReplay("warmup", path, 3); err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}

	m := NewReplaysModel(store, 80, 24)
	next, _ := m.Update(runeKey('x'))
	m = next.(ReplaysModel)

	if entry, err := store.ReplayByName("warmup"); err != nil || entry != nil {
		t.Errorf("ReplayByName() = %+v, %v, want the entry gone", entry, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("stream file should be removed, Stat() = %v", err)
	}
	if !strings.Contains(m.View(), "deleted warmup") {
		t.Error("view should report the deletion")
	}
}

func TestReplaysDeleteToleratesMissingStream(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "stretch.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveReplay("gone", filepath.Join(dir, "gone.yaml"), 1); err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}

	m := NewReplaysModel(store, 80, 24)
	next, _ := m.Update(runeKey('x'))
	m = next.(ReplaysModel)

	if !strings.Contains(m.View(), "deleted gone") {
		t.Errorf("a missing stream file should not be an error, view:\n%s", m.View())
	}
}
