package contentcache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKeyFor(t *testing.T) {
	a := KeyFor([]byte("tower, united 123"))
	b := KeyFor([]byte("tower, united 123"))
	c := KeyFor([]byte("ground, delta 456"))

	if a != b {
		t.Errorf("identical bytes produced different keys: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("different bytes produced the same key: %s", a)
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32 hex chars", len(a))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key := KeyFor([]byte("audio-bytes"))

	if _, ok := store.Get(ctx, key, KindTranscript); ok {
		t.Fatal("expected miss on empty store")
	}

	payload := []byte("San Diego Tower, United 123, ready for departure.")
	if err := store.Put(ctx, key, KindTranscript, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get(ctx, key, KindTranscript)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if string(got) != string(payload) {
		t.Errorf("Get = %q, want %q", got, payload)
	}

	// Kinds are independent entries under the same key.
	if _, ok := store.Get(ctx, key, KindParsedConversation); ok {
		t.Error("expected miss for a kind that was never written")
	}
}

func TestFileStoreCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key := KeyFor([]byte("audio"))

	if err := store.Put(ctx, key, KindTranscript, []byte("transcript text")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Truncate the entry file to simulate a partial write left by a crash.
	path := filepath.Join(dir, string(key)+".transcript.json")
	if err := os.WriteFile(path, []byte(`{"kind":"transcr`), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	if _, ok := store.Get(ctx, key, KindTranscript); ok {
		t.Fatal("corrupt entry must read as a miss, not a hit")
	}
}

func TestFileStoreNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, KeyFor([]byte("a")), KindTranscript, []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreOverwriteKeepsLatest(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key := KeyFor([]byte("audio"))

	if err := store.Put(ctx, key, KindTranscript, []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, key, KindTranscript, []byte("second")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get(ctx, key, KindTranscript)
	if !ok || string(got) != "second" {
		t.Errorf("Get = %q, %v; want %q, true", got, ok, "second")
	}
}
