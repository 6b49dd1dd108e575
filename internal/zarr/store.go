// Package zarr implements read and write access to Zarr v2 chunked arrays
// on a directory store. It provides the chunked-array layer underneath the
// ngff pixel buffer: array metadata parsing, element-type handling, chunk
// codecs, and N-dimensional hyperslab reads and writes.
package zarr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrKeyNotFound is returned by Store.Get for keys that have no value.
// Absent chunk keys are legal in Zarr and resolve to the array fill value.
var ErrKeyNotFound = errors.New("zarr: key not found")

// Store is the minimal key-value contract a Zarr hierarchy is read from and
// written to. Keys are slash-separated paths relative to the store root.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// DirectoryStore is a Store backed by a filesystem directory, the native
// on-disk layout for Zarr v2 hierarchies.
type DirectoryStore struct {
	root string
}

// NewDirectoryStore returns a store rooted at the given directory. The
// directory need not exist until the first Set.
func NewDirectoryStore(root string) *DirectoryStore {
	return &DirectoryStore{root: root}
}

// Root returns the store's root directory.
func (s *DirectoryStore) Root() string {
	return s.root
}

func (s *DirectoryStore) keyPath(key string) (string, error) {
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Get reads the value at key, or ErrKeyNotFound if no file exists for it.
func (s *DirectoryStore) Get(key string) ([]byte, error) {
	p, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("store read %q: %w", key, err)
	}
	return data, nil
}

// Set writes value at key, creating parent directories as needed.
func (s *DirectoryStore) Set(key string, value []byte) error {
	p, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("store mkdir for %q: %w", key, err)
	}
	if err := os.WriteFile(p, value, 0o644); err != nil {
		return fmt.Errorf("store write %q: %w", key, err)
	}
	return nil
}
