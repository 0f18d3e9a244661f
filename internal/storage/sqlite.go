// Package storage provides SQLite-based indexing of recorded replays.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for the replay index.
type Store struct {
	db *sql.DB
}

// ReplayEntry is one indexed replay stream.
type ReplayEntry struct {
	ID        string
	Name      string
	Path      string
	Frames    int
	CreatedAt time.Time
}

// Age formats how long ago the replay was recorded, relative to now.
func (e ReplayEntry) Age(now time.Time) string {
	if e.CreatedAt.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(e.CreatedAt, now, "ago", "from now")
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS replays (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_created ON replays(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveReplay indexes a finished recording. Saving an existing name
// replaces its path and frame count and keeps its ID.
// Returns the ID of the entry.
func (s *Store) SaveReplay(name, path string, frames int) (string, error) {
	if name == "" {
		return "", errors.New("storage: replay name is empty")
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO replays (id, name, path, frames) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			path = excluded.path,
			frames = excluded.frames,
			created_at = CURRENT_TIMESTAMP`,
		id, name, path, frames,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save replay: %w", err)
	}

	var stored string
	if err := s.db.QueryRow("SELECT id FROM replays WHERE name = ?", name).Scan(&stored); err != nil {
		return "", fmt.Errorf("storage: cannot read replay id: %w", err)
	}
	return stored, nil
}

// ReplayByName returns the named replay, or nil if there is none.
func (s *Store) ReplayByName(name string) (*ReplayEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, name, path, frames, created_at FROM replays WHERE name = ?`,
		name,
	)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	return &e, nil
}

// RecentReplays retrieves the most recently recorded replays.
func (s *Store) RecentReplays(limit int) ([]ReplayEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, name, path, frames, created_at
		 FROM replays
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var entries []ReplayEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// DeleteReplay removes the named replay from the index. It reports whether
// an entry existed. The stream file itself is left alone.
func (s *Store) DeleteReplay(name string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM replays WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (ReplayEntry, error) {
	var e ReplayEntry
	var createdAt any
	if err := sc.Scan(&e.ID, &e.Name, &e.Path, &e.Frames, &createdAt); err != nil {
		return e, err
	}

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		e.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			e.CreatedAt = parsed
		}
	}
	return e, nil
}
