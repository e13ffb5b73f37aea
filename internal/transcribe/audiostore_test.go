package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	path, err := store.Store(ctx, []byte("audio-bytes"), "tower.mp3")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.HasSuffix(path, "_tower.mp3") {
		t.Errorf("stored path %q should keep the original basename", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("stored content = %q", data)
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after Delete: %v", err)
	}
}

func TestLocalStoreSameNameNeverCollides(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	first, err := store.Store(ctx, []byte("one"), "same.wav")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	second, err := store.Store(ctx, []byte("two"), "same.wav")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if first == second {
		t.Errorf("both uploads stored at %q", first)
	}
}

func TestLocalStoreDeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if err := store.Delete(context.Background(), filepath.Join(t.TempDir(), "gone.mp3")); err != nil {
		t.Errorf("Delete of missing file: %v", err)
	}
}
