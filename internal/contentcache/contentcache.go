package contentcache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Kind distinguishes the payload families stored under one content key.
type Kind string

const (
	KindTranscript         Kind = "transcript"
	KindParsedConversation Kind = "parsed_conversation"
)

// Key identifies one logical recording by its byte content, independent
// of filename. Hex-encoded 128-bit digest.
type Key string

// KeyFor computes the content key for raw audio bytes.
func KeyFor(data []byte) Key {
	sum := md5.Sum(data)
	return Key(hex.EncodeToString(sum[:]))
}

func (k Key) String() string { return string(k) }

// Entry is the stored envelope for one (key, kind) pair. Entries are
// written once and never mutated.
type Entry struct {
	Kind      Kind      `json:"kind"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the shared content-addressed cache used by the transcription
// and extraction stages.
//
// Get returns (payload, true) on a hit. A well-formed absent key, an
// unreadable entry, or a corrupt entry all return (nil, false); storage
// problems degrade to a miss and are logged, never surfaced. Put is
/// effectively write-once per (key, kind): a second Put may overwrite,
// but callers must not rely on update semantics.
type Store interface {
	Get(ctx context.Context, key Key, kind Kind) ([]byte, bool)
	Put(ctx context.Context, key Key, kind Kind, payload []byte) error
}

// IOError wraps a cache storage failure. It is always non-fatal for
// readers; writers log it and fall through.
type IOError struct {
	Op  string
	Ref string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("contentcache: %s %s: %v", e.Op, e.Ref, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
