// Package lazyjson provides a thread-safe, lazy-loading manager for JSON files.
// It tracks modifications (dirty state) and ensures atomic writes when saving
// to disk. A missing file reads as the default value without touching the
// filesystem; only a Modify followed by Save creates it.
package lazyjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager provides high-level control over a JSON-backed data structure.
// It handles concurrent access and ensures data is only loaded from disk when
// first requested.
type manager[T any] struct {
	filepath string
	data     *T
	loaded   bool
	dirty    bool
	mu       sync.RWMutex
	opts     *options[T]
}

// Manager is the exported handle returned by New. It carries the full
// method set of the underlying manager. (Declared as an interface rather
// than a generic alias of *manager[T] because generic type aliases need
// Go 1.24+ and this module builds with Go 1.21.)
type Manager[T any] interface {
	Get() (*T, error)
	Modify(fn func(*T) error) error
	Save() error
	IsDirty() bool
	IsLoaded() bool
}

var _ Manager[struct{}] = (*manager[struct{}])(nil)

// options holds configuration for the Manager.
type options[T any] struct {
	indent       string
	fileMode     os.FileMode
	defaultValue func() *T
}

// New creates a new Manager for the given file path.
func New[T any](filepath string, opts ...Option[T]) *manager[T] {
	mgr := &manager[T]{
		filepath: filepath,
		opts: &options[T]{
			indent:       "  ",
			fileMode:     0644,
			defaultValue: nil,
		},
	}

	for _, opt := range opts {
		opt(mgr.opts)
	}

	return mgr
}

// Get returns the current data, loading it lazily if needed.
// Returns a pointer to the data for reading.
func (m *manager[T]) Get() (*T, error) {
	m.mu.RLock()
	if m.loaded {
		defer m.mu.RUnlock()
		return m.data, nil
	}
	m.mu.RUnlock()

	// Need to load, acquire write lock
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.loaded {
		return m.data, nil
	}

	return m.data, m.loadLocked()
}

// Modify executes a function that can modify the data.
// The data is lazily loaded if needed, and automatically marked dirty.
func (m *manager[T]) Modify(fn func(*T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		if err := m.loadLocked(); err != nil {
			return err
		}
	}

	if err := fn(m.data); err != nil {
		return err
	}

	m.dirty = true
	return nil
}

// Save writes the data to disk if it's dirty.
// Does nothing if the data hasn't been modified.
func (m *manager[T]) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	if !m.loaded {
		return errors.New("cannot save: data not loaded")
	}

	return m.saveLocked()
}

// IsDirty returns true if the data has been modified since the last load/save.
func (m *manager[T]) IsDirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// IsLoaded returns true if the data has been loaded from disk.
func (m *manager[T]) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// loadLocked loads data from the file. A missing file yields the default
// value, clean, so read-only callers never cause a write.
// Must be called with write lock held.
func (m *manager[T]) loadLocked() error {
	data, err := os.ReadFile(m.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			if m.opts.defaultValue != nil {
				m.data = m.opts.defaultValue()
			} else {
				var zero T
				m.data = &zero
			}
			m.loaded = true
			m.dirty = false
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	m.data = &result
	m.loaded = true
	m.dirty = false

	return nil
}

// saveLocked writes data to the file atomically.
// Must be called with write lock held.
func (m *manager[T]) saveLocked() error {
	var data []byte
	var err error

	if m.opts.indent != "" {
		data, err = json.MarshalIndent(m.data, "", m.opts.indent)
	} else {
		data, err = json.Marshal(m.data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(m.filepath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tempFile := m.filepath + ".tmp"
	if err := os.WriteFile(tempFile, data, m.opts.fileMode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, m.filepath); err != nil {
		os.Remove(tempFile) // Clean up temp file on error
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	m.dirty = false
	return nil
}
