package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AudioStore persists uploaded recordings for later playback. Storage
// failures are non-fatal for a successful transcription; Delete is
// invoked best-effort when transcription fails.
type AudioStore interface {
	Store(ctx context.Context, audio []byte, suggestedName string) (string, error)
	Delete(ctx context.Context, storedPath string) error
}

// LocalStore writes recordings under a directory with collision-resistant
// generated names.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: create audio dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// storedName builds "{timestamp}_{uuid8}_{original}" so repeated uploads
// of the same filename never collide.
func storedName(suggestedName string) string {
	ts := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s", ts, uuid.NewString()[:8], filepath.Base(suggestedName))
}

func (s *LocalStore) Store(ctx context.Context, audio []byte, suggestedName string) (string, error) {
	path := filepath.Join(s.dir, storedName(suggestedName))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("transcribe: persist audio %s: %w", path, err)
	}
	return path, nil
}

func (s *LocalStore) Delete(ctx context.Context, storedPath string) error {
	if err := os.Remove(storedPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("transcribe: delete audio %s: %w", storedPath, err)
	}
	return nil
}
