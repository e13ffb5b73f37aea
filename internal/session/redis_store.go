package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// RedisStore persists session state in Redis with a sliding TTL so idle
// sessions expire on their own.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("radioscribe.internal.session"),
	}
}

func activeKey(sessionID string) string {
	return fmt.Sprintf("session:%s:active", sessionID)
}

func blobKey(sessionID, name string) string {
	return fmt.Sprintf("session:%s:blob:%s", sessionID, name)
}

func (s *RedisStore) ActiveAssistant(ctx context.Context, sessionID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.active_assistant")
	defer span.End()

	val, err := s.redis.Get(ctx, activeKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("session: failed to load active assistant: %w", err)
	}
	return val, nil
}

func (s *RedisStore) SetActiveAssistant(ctx context.Context, sessionID, assistant string) error {
	ctx, span := s.tracer.Start(ctx, "session.set_active_assistant")
	defer span.End()

	if err := s.redis.Set(ctx, activeKey(sessionID), assistant, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist active assistant: %w", err)
	}
	return nil
}

func (s *RedisStore) GetBlob(ctx context.Context, sessionID, name string) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "session.get_blob")
	defer span.End()

	data, err := s.redis.Get(ctx, blobKey(sessionID, name)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("session: failed to load blob %s: %w", name, err)
	}
	return data, true, nil
}

func (s *RedisStore) PutBlob(ctx context.Context, sessionID, name string, payload []byte) error {
	ctx, span := s.tracer.Start(ctx, "session.put_blob")
	defer span.End()

	if err := s.redis.Set(ctx, blobKey(sessionID, name), payload, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist blob %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) DeleteBlob(ctx context.Context, sessionID, name string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete_blob")
	defer span.End()

	if err := s.redis.Del(ctx, blobKey(sessionID, name)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to delete blob %s: %w", name, err)
	}
	return nil
}
