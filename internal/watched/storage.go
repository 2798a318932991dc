package watched

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNoData is returned by Storage.Get when nothing is stored under a key.
var ErrNoData = errors.New("no data stored")

// Storage is a key/value slot store, the durable backend of a Store.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	Clear(key string) error
}

// FSStorage keeps each key as a JSON file inside a directory.
type FSStorage struct {
	fs  afero.Fs
	dir string
}

// NewFSStorage creates the directory if needed and returns a storage rooted
// there.
func NewFSStorage(fs afero.Fs, dir string) (*FSStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory not provided")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FSStorage{fs: fs, dir: dir}, nil
}

// Path returns the file backing key.
func (s *FSStorage) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the slot for key. A missing slot yields ErrNoData.
func (s *FSStorage) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the slot atomically through a temp file and rename.
func (s *FSStorage) Set(key string, data []byte) error {
	path := s.Path(key)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Clear removes the slot for key. Clearing a missing slot is not an error.
func (s *FSStorage) Clear(key string) error {
	err := s.fs.Remove(s.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}
