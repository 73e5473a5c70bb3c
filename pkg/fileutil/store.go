package fileutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

// Store abstracts descriptor text persistence. The configuration engine never
// assumes a particular storage medium beyond these operations; the filesystem
// implementation is the default and an in-memory one backs tests.
type Store interface {
	// Read returns the full contents of the file at path.
	Read(path string) ([]byte, error)

	// Write persists data at path, creating parent directories as needed.
	// Implementations must be atomic per file: a failed write leaves any
	// previous content intact.
	Write(path string, data []byte) error

	// Exists reports whether path exists (file or directory).
	Exists(path string) bool
}

// OSStore is the filesystem-backed Store. Writes are atomic (temp + rename).
type OSStore struct{}

// NewOSStore returns a Store backed by the local filesystem.
func NewOSStore() *OSStore {
	return &OSStore{}
}

func (s *OSStore) Read(path string) ([]byte, error) {
	return ReadFileWithLimit(path)
}

func (s *OSStore) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}
	return AtomicWriteFile(path, data, 0644)
}

func (s *OSStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MemStore is an in-memory Store for tests. Paths are treated as opaque
// slash-separated keys; a directory "exists" if any stored path is nested
// under it.
type MemStore struct {
	files map[string][]byte
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

func (s *MemStore) Read(path string) ([]byte, error) {
	data, ok := s.files[filepath.Clean(path)]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "reading %s", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Write(path string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	s.files[filepath.Clean(path)] = stored
	return nil
}

func (s *MemStore) Exists(path string) bool {
	path = filepath.Clean(path)
	if _, ok := s.files[path]; ok {
		return true
	}
	prefix := path + string(filepath.Separator)
	for p := range s.files {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// Paths returns all stored file paths in sorted order.
func (s *MemStore) Paths() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
