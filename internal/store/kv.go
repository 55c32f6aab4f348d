package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is the storage port the namespace writes through. The browser original
// targeted localStorage; here the same store logic can target an in-memory
// map (tests) or a directory on disk (desktop/CLI embedding).
type KV interface {
	// Get returns the value for key and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemoryKV is a process-local KV, safe for concurrent use.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}

	// Copy so callers cannot mutate the stored value
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// FileKV keeps one JSON file per key inside a directory.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	return os.WriteFile(f.path(key), value, 0644)
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}
