package contentcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, ttl, nil), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()
	key := KeyFor([]byte("audio"))

	if _, ok := store.Get(ctx, key, KindParsedConversation); ok {
		t.Fatal("expected miss on empty store")
	}

	payload := []byte(`[{"role":"pilot","message":"rolling"}]`)
	if err := store.Put(ctx, key, KindParsedConversation, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get(ctx, key, KindParsedConversation)
	if !ok || string(got) != string(payload) {
		t.Errorf("Get = %q, %v; want payload back", got, ok)
	}
}

func TestRedisStoreCorruptEntryIsMiss(t *testing.T) {
	store, mr := newTestRedisStore(t, 0)
	ctx := context.Background()
	key := KeyFor([]byte("audio"))

	mr.Set(cacheKey(key, KindTranscript), `{"kind": "trans`)

	if _, ok := store.Get(ctx, key, KindTranscript); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()
	key := KeyFor([]byte("audio"))

	if err := store.Put(ctx, key, KindTranscript, []byte("text")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok := store.Get(ctx, key, KindTranscript); ok {
		t.Fatal("expected expired entry to be a miss")
	}
}

func TestRedisStoreServerDownIsMiss(t *testing.T) {
	store, mr := newTestRedisStore(t, 0)
	ctx := context.Background()
	key := KeyFor([]byte("audio"))

	if err := store.Put(ctx, key, KindTranscript, []byte("text")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.Close()

	if _, ok := store.Get(ctx, key, KindTranscript); ok {
		t.Fatal("unreachable server must degrade to a miss")
	}
}
