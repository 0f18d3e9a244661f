package settings

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the writable side of settings persistence: one document per
// mapper kind. Load must return an error satisfying errors.Is(err,
// fs.ErrNotExist) when the document has never been saved.
type Store interface {
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
}

// DirStore keeps each document as <dir>/<name>.yaml.
type DirStore struct {
	dir string
}

// NewDirStore creates a store rooted at dir. The directory is created on the
// first save, so constructing a store never touches the disk.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Dir returns the save directory.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Load reads a saved document.
func (s *DirStore) Load(name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}

// Save writes a document through a temp file and a rename, so a crash
// mid-write leaves either the old or the new file behind.
func (s *DirStore) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("settings: cannot create directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("settings: cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("settings: cannot write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: cannot write %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: cannot replace %s: %w", name, err)
	}
	return nil
}
