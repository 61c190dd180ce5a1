package cart

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-faster/errors"
)

// FileStorage keeps the cart snapshot in a JSON file on the client.
type FileStorage struct {
	path string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage returns a FileStorage writing to path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultPath returns the per-user cart file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "user config dir")
	}
	return filepath.Join(dir, "teez", "cart.json"), nil
}

// Load reads the snapshot. A missing file is an empty cart.
func (s *FileStorage) Load(_ context.Context) ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}
	items, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.path)
	}
	return items, nil
}

// Save replaces the snapshot atomically: readers see either the old or the
// new file, never a partial one.
func (s *FileStorage) Save(_ context.Context, items []Item) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create cart dir")
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(Encode(items)); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

// MemoryStorage keeps the snapshot in memory.
type MemoryStorage struct {
	mu    sync.Mutex
	items []Item
	saves int
}

var _ Storage = (*MemoryStorage)(nil)

// Load implements Storage.
func (s *MemoryStorage) Load(_ context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

// Save implements Storage.
func (s *MemoryStorage) Save(_ context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.saves++
	return nil
}

// Saves returns how many snapshots were written.
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
