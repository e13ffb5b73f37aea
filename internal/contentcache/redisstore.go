package contentcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atcdesk/radioscribe/pkg/logging"
)

// RedisStore holds cache entries in Redis. A Redis SET is atomic, so
// readers never see partial entries; an unreachable server or a corrupt
// value degrades to a miss.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisStore wraps an existing Redis client. ttl of zero means
// entries never expire.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisStore {
	if client == nil {
		panic("contentcache: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger.Component("contentcache")}
}

func cacheKey(key Key, kind Kind) string {
	return fmt.Sprintf("cache:%s:%s", key, kind)
}

func (s *RedisStore) Get(ctx context.Context, key Key, kind Kind) ([]byte, bool) {
	data, err := s.client.Get(ctx, cacheKey(key, kind)).Bytes()
	if err != nil {
		if err != redis.Nil {
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

func (s *RedisStore) Put(ctx context.Context, key Key, kind Kind, payload []byte) error {
	entry := Entry{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return &IOError{Op: "marshal", Ref: key.String(), Err: err}
	}
	if err := s.client.Set(ctx, cacheKey(key, kind), data, s.ttl).Err(); err != nil {
		return &IOError{Op: "set", Ref: cacheKey(key, kind), Err: err}
	}
	return nil
}
