package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for single-node deployments and
// tests. State does not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	active map[string]string
	blobs  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		active: make(map[string]string),
		blobs:  make(map[string][]byte),
	}
}

func (s *MemoryStore) ActiveAssistant(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[sessionID], nil
}

func (s *MemoryStore) SetActiveAssistant(ctx context.Context, sessionID, assistant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[sessionID] = assistant
	return nil
}

func (s *MemoryStore) GetBlob(ctx context.Context, sessionID, name string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[blobKey(sessionID, name)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *MemoryStore) PutBlob(ctx context.Context, sessionID, name string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]byte, len(payload))
	copy(data, payload)
	s.blobs[blobKey(sessionID, name)] = data
	return nil
}

func (s *MemoryStore) DeleteBlob(ctx context.Context, sessionID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, blobKey(sessionID, name))
	return nil
}
