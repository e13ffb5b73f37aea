// Package session keeps per-session routing state: which assistant is
// active and small opaque blobs assistants persist between turns.
package session

import "context"

// Store holds the state one chat session carries across turns. An absent
// active assistant is the empty string. Blobs are namespaced per session
// and per name; absent blobs return ok=false, never an error.
type Store interface {
	ActiveAssistant(ctx context.Context, sessionID string) (string, error)
	SetActiveAssistant(ctx context.Context, sessionID, assistant string) error
	GetBlob(ctx context.Context, sessionID, name string) ([]byte, bool, error)
	PutBlob(ctx context.Context, sessionID, name string, payload []byte) error
	DeleteBlob(ctx context.Context, sessionID, name string) error
}
