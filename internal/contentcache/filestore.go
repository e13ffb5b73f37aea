package contentcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/atcdesk/radioscribe/pkg/logging"
)

// FileStore keeps one JSON envelope file per (key, kind) under dir.
// Writes go to a temporary sibling first and are published with an
// atomic rename, so a reader never observes a half-written entry.
type FileStore struct {
	dir    string
	logger *logging.Logger
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string, logger *logging.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("contentcache: create cache dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger.Component("contentcache")}, nil
}

func (s *FileStore) entryPath(key Key, kind Kind) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s.json", key, kind))
}

// Get returns the cached payload, treating any read or decode failure
// as a miss. Misses are always safe: the caller recomputes.
func (s *FileStore) Get(ctx context.Context, key Key, kind Kind) ([]byte, bool) {
	path := s.entryPath(key, kind)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed, treating as miss", "key", key.String(), "kind", string(kind), "error", err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("cache entry corrupt, treating as miss", "key", key.String(), "kind", string(kind), "error", err)
		return nil, false
	}
	if entry.Kind != kind || len(entry.Payload) == 0 {
		s.logger.Warn("cache entry malformed, treating as miss", "key", key.String(), "kind", string(kind))
		return nil, false
	}
	return entry.Payload, true
}

// Put publishes an entry atomically. Errors are reported so the caller
// can log them, but a failed Put never invalidates the computed result.
func (s *FileStore) Put(ctx context.Context, key Key, kind Kind, payload []byte) error {
	entry := Entry{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return &IOError{Op: "marshal", Ref: key.String(), Err: err}
	}

	path := s.entryPath(key, kind)
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString()[:8])
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &IOError{Op: "write", Ref: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "rename", Ref: path, Err: err}
	}
	return nil
}
