package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const filePermissions os.FileMode = 0o644

// Store reads and writes workbooks under a directory
type Store struct {
	fs  afero.Fs
	dir string
}

func NewStore(fs afero.Fs, dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{fs: fs, dir: dir}
}

// NewOSStore returns a Store on the real filesystem
func NewOSStore(dir string) *Store {
	return NewStore(afero.NewOsFs(), dir)
}

// Save writes data as name inside the store directory and returns its path
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := afero.WriteFile(s.fs, path, data, filePermissions); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Read loads a file. Relative paths are resolved against the working
// directory, not the store directory.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
