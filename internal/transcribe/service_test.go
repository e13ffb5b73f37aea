package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/atcdesk/radioscribe/internal/contentcache"
)

type mockClient struct {
	calls int
	text  string
	err   error
}

func (m *mockClient) Transcribe(ctx context.Context, req Request) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockAudioStore struct {
	stored  []string
	deleted []string
	failPut bool
}

func (m *mockAudioStore) Store(ctx context.Context, audio []byte, name string) (string, error) {
	if m.failPut {
		return "", errors.New("disk full")
	}
	path := "stored/" + name
	m.stored = append(m.stored, path)
	return path, nil
}

func (m *mockAudioStore) Delete(ctx context.Context, storedPath string) error {
	m.deleted = append(m.deleted, storedPath)
	return nil
}

func newTestService(t *testing.T, client *mockClient, audio AudioStore) *Service {
	t.Helper()
	cache, err := contentcache.NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewService(client, cache, audio, nil, nil)
}

func TestTranscribeColdCacheCallsExternalOnce(t *testing.T) {
	client := &mockClient{text: "United 123, cleared for takeoff runway 27."}
	svc := newTestService(t, client, &mockAudioStore{})
	ctx := context.Background()
	audio := []byte("fake-mp3-bytes")

	first, err := svc.Transcribe(ctx, audio, "tower.mp3")
	if err != nil {
		t.Fatalf("first Transcribe: %v", err)
	}
	if first.CacheHit {
		t.Error("first call should be a cache miss")
	}

	second, err := svc.Transcribe(ctx, audio, "tower.mp3")
	if err != nil {
		t.Fatalf("second Transcribe: %v", err)
	}
	if !second.CacheHit {
		t.Error("second call should be a cache hit")
	}
	if first.Transcript != second.Transcript {
		t.Errorf("transcripts differ: %q vs %q", first.Transcript, second.Transcript)
	}
	if client.calls != 1 {
		t.Errorf("external calls = %d, want 1", client.calls)
	}
	if first.Key != second.Key {
		t.Errorf("keys differ for identical bytes: %s vs %s", first.Key, second.Key)
	}
}

func TestTranscribeFailureCleansUpStoredAudio(t *testing.T) {
	client := &mockClient{err: errors.New("whisper unavailable")}
	audio := &mockAudioStore{}
	svc := newTestService(t, client, audio)

	_, err := svc.Transcribe(context.Background(), []byte("bytes"), "exchange.wav")

	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *TranscriptionError", err)
	}
	if terr.Unwrap() == nil || terr.Unwrap().Error() != "whisper unavailable" {
		t.Errorf("cause not preserved: %v", terr.Unwrap())
	}
	if len(audio.stored) != 1 || len(audio.deleted) != 1 {
		t.Errorf("stored=%v deleted=%v; want the persisted copy removed", audio.stored, audio.deleted)
	}
}

func TestTranscribeStoreFailureIsNonFatal(t *testing.T) {
	client := &mockClient{text: "Delta 789, line up and wait."}
	svc := newTestService(t, client, &mockAudioStore{failPut: true})

	res, err := svc.Transcribe(context.Background(), []byte("bytes"), "exchange.m4a")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Transcript != "Delta 789, line up and wait." {
		t.Errorf("Transcript = %q", res.Transcript)
	}
	if res.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty after store failure", res.AudioPath)
	}
	if res.Format != "m4a" {
		t.Errorf("Format = %q, want m4a", res.Format)
	}
}

func TestTranscribeFailureCachesNothing(t *testing.T) {
	client := &mockClient{err: errors.New("boom")}
	svc := newTestService(t, client, nil)
	ctx := context.Background()
	audio := []byte("bytes")

	if _, err := svc.Transcribe(ctx, audio, "a.mp3"); err == nil {
		t.Fatal("expected error")
	}

	// A retry must hit the external capability again, not a cached partial.
	client.err = nil
	client.text = "recovered"
	res, err := svc.Transcribe(ctx, audio, "a.mp3")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.CacheHit {
		t.Error("retry after failure must not be a cache hit")
	}
	if client.calls != 2 {
		t.Errorf("external calls = %d, want 2", client.calls)
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		filename string
		want     bool
	}{
		{"mp3 mime", "audio/mpeg", "x.bin", true},
		{"wav mime", "audio/wav", "", true},
		{"extension fallback", "", "tower.M4A", true},
		{"text file", "text/plain", "notes.txt", false},
		{"pdf", "application/pdf", "doc.pdf", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAudioFile(tt.mime, tt.filename); got != tt.want {
				t.Errorf("IsAudioFile(%q, %q) = %v, want %v", tt.mime, tt.filename, got, tt.want)
			}
		})
	}
}
