package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/atcdesk/radioscribe/internal/contentcache"
	"github.com/atcdesk/radioscribe/internal/observability/metrics"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

var tracer = otel.Tracer("radioscribe.internal.extract")

// Request carries one extraction call. ContentKey and ListenerIdentity
// are optional; without a key the conversation is neither looked up nor
// cached.
type Request struct {
	Transcript       string
	ContentKey       contentcache.Key
	ListenerIdentity string
}

// Service turns transcript text into an ordered conversation, consulting
// the content cache when a content key is supplied.
type Service struct {
	llm     LLMClient
	cache   contentcache.Store
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

func NewService(llm LLMClient, cache contentcache.Store, logger *logging.Logger, m *metrics.PipelineMetrics) *Service {
	if llm == nil {
		panic("extract: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		llm:     llm,
		cache:   cache,
		logger:  logger.Component("extract"),
		metrics: m,
	}
}

// Extract returns the structured conversation for a transcript. Cached
// conversations pass through the same normalization as fresh decodes so
// callers always see canonical turns.
func (s *Service) Extract(ctx context.Context, req Request) ([]ConversationTurn, error) {
	ctx, span := tracer.Start(ctx, "extract.extract")
	defer span.End()
	span.SetAttributes(attribute.Int("radioscribe.transcript_chars", len(req.Transcript)))

	if strings.TrimSpace(req.Transcript) == "" {
		s.logger.Warn("empty transcript, nothing to extract")
		return []ConversationTurn{}, nil
	}

	if cached, ok := s.lookupCached(ctx, req.ContentKey); ok {
		s.metrics.ObserveExtraction("ok", "cache")
		return cached, nil
	}

	resp, err := s.llm.Complete(ctx, LLMRequest{
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: BuildPrompt(req.Transcript, req.ListenerIdentity)},
		},
		Temperature: 0,
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveExtraction("error", "model")
		return nil, fmt.Errorf("extract: model call failed: %w", err)
	}

	turns, err := DecodeTurns(UnwrapFences(resp.Text), s.logger)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveExtraction("error", "model")
		return nil, err
	}

	s.storeCached(ctx, req.ContentKey, turns)
	s.metrics.ObserveExtraction("ok", "model")
	s.logger.Info("conversation extracted", "turns", len(turns))
	return turns, nil
}

func (s *Service) lookupCached(ctx context.Context, key contentcache.Key) ([]ConversationTurn, bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	payload, ok := s.cache.Get(ctx, key, contentcache.KindParsedConversation)
	s.metrics.ObserveCacheLookup(string(contentcache.KindParsedConversation), ok)
	if !ok {
		return nil, false
	}
	var turns []ConversationTurn
	if err := json.Unmarshal(payload, &turns); err != nil {
		s.logger.Warn("cached conversation undecodable, recomputing", "key", key.String(), "error", err)
		return nil, false
	}
	s.logger.Info("conversation served from cache", "key", key.String(), "turns", len(turns))
	return NormalizeTurns(turns, s.logger), true
}

func (s *Service) storeCached(ctx context.Context, key contentcache.Key, turns []ConversationTurn) {
	if s.cache == nil || key == "" {
		return
	}
	payload, err := json.Marshal(turns)
	if err != nil {
		s.logger.Warn("conversation marshal failed, not cached", "key", key.String(), "error", err)
		return
	}
	if err := s.cache.Put(ctx, key, contentcache.KindParsedConversation, payload); err != nil {
		s.logger.Warn("conversation cache write failed", "key", key.String(), "error", err)
	}
}
