// Package storage provides durable key-value stores used to persist the
// client session between runs.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// DefaultFile is the file used by FileStore when no path is configured.
const DefaultFile = "session.json"

// FileStore keeps string values in a JSON file. Every write rewrites the file.
type FileStore struct {
	path   string
	log    *zap.Logger
	mu     sync.Mutex
	values map[string]string
}

// NewFileStore opens the store at path, loading existing values if the file exists.
// A file that cannot be decoded is treated as empty and is overwritten by the
// next write. log may be nil.
func NewFileStore(path string, log *zap.Logger) (*FileStore, error) {
	if path == "" {
		path = DefaultFile
	}
	if log == nil {
		log = zap.NewNop()
	}
	fs := &FileStore{path: path, log: log, values: make(map[string]string)}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	f, err := os.Open(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&fs.values); err != nil {
		fs.log.Warn("discarding unreadable store file", zap.String("path", fs.path), zap.Error(err))
		fs.values = make(map[string]string)
		return nil
	}
	if fs.values == nil {
		fs.values = make(map[string]string)
	}
	return nil
}

// save must be called with mu held.
func (fs *FileStore) save() error {
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	tmp := fs.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	if err := json.NewEncoder(f).Encode(fs.values); err != nil {
		f.Close()
		return fmt.Errorf("encode store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return os.Rename(tmp, fs.path)
}

// Get returns the value stored under key.
func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.values[key]
	return v, ok, nil
}

// Set stores value under key and flushes the file.
func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.values[key]
	fs.values[key] = value
	if err := fs.save(); err != nil {
		if had {
			fs.values[key] = prev
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

// Remove deletes key and flushes the file. Removing a missing key is not an error.
func (fs *FileStore) Remove(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.values[key]
	if !had {
		return nil
	}
	delete(fs.values, key)
	if err := fs.save(); err != nil {
		fs.values[key] = prev
		return err
	}
	return nil
}

// MemoryStore is a process-local store, used when nothing should outlive the run.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	v, ok := ms.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (ms *MemoryStore) Set(_ context.Context, key, value string) error {
	ms.mu.Lock()
	ms.values[key] = value
	ms.mu.Unlock()
	return nil
}

// Remove deletes key.
func (ms *MemoryStore) Remove(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.values, key)
	ms.mu.Unlock()
	return nil
}
