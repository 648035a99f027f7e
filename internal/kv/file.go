package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists each document as one JSON file under a data directory.
// It is the zero-configuration default for local runs and tests.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Read returns the document for key, or def when the file does not exist.
func (s *FileStore) Read(_ context.Context, key string, def json.RawMessage) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	return data, nil
}

// Write stores the document atomically: write to a temp file, then rename.
func (s *FileStore) Write(_ context.Context, key string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit document %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// path maps a key to a file name, flattening separators so keys like
// "traces/bot-1" stay inside the data dir.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}
