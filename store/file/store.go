// Package file stores snapshots as files in a directory, one file per key.
// It backs single-user hosts such as the keeper CLI that have no database.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xraph/keeper/snapshot"
)

// Compile-time interface check.
var _ snapshot.Store = (*Store)(nil)

// Store keeps each snapshot in <dir>/<key>.snapshot with mode 0600.
type Store struct {
	dir string
}

// New creates a file store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keeper/file: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("keeper/file: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".snapshot"), nil
}

func (s *Store) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("snapshot %q: %w", key, snapshot.ErrNotFound)
		}
		return nil, fmt.Errorf("keeper: load snapshot: %w", err)
	}
	return data, nil
}

// SaveSnapshot writes to a temporary file and renames it over the target so
// readers never observe a partial snapshot.
func (s *Store) SaveSnapshot(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("keeper: save snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("keeper: save snapshot: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck,gosec // chmod error takes precedence
		return fmt.Errorf("keeper: save snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("keeper: save snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("keeper: save snapshot: %w", err)
	}
	return nil
}

func (s *Store) DeleteSnapshot(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("keeper: delete snapshot: %w", err)
	}
	return nil
}
