package transcribe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/atcdesk/radioscribe/internal/contentcache"
	"github.com/atcdesk/radioscribe/internal/observability/metrics"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

var tracer = otel.Tracer("radioscribe.internal.transcribe")

// TranscriptionError reports a failed external transcription call with
// the original cause preserved.
type TranscriptionError struct {
	Filename string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe: %s: %v", e.Filename, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Result is the outcome of one transcription request.
type Result struct {
	Key              contentcache.Key
	Transcript       string
	AudioPath        string
	Format           string
	OriginalFilename string
	CacheHit         bool
}

// Service turns raw audio bytes into transcript text, consulting the
// content cache before calling the external capability.
type Service struct {
	client  Client
	cache   contentcache.Store
	audio   AudioStore
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

func NewService(client Client, cache contentcache.Store, audio AudioStore, logger *logging.Logger, m *metrics.PipelineMetrics) *Service {
	if client == nil {
		panic("transcribe: client cannot be nil")
	}
	if cache == nil {
		panic("transcribe: cache cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:  client,
		cache:   cache,
		audio:   audio,
		logger:  logger.Component("transcribe"),
		metrics: m,
	}
}

// Transcribe computes the content key for the audio bytes, persists the
// recording for playback, and returns the transcript from cache when one
// exists. The playback copy is independent of caching: a store failure
// never cancels a successful transcription, but a transcription failure
// removes the already-persisted copy.
func (s *Service) Transcribe(ctx context.Context, audio []byte, displayName string) (Result, error) {
	ctx, span := tracer.Start(ctx, "transcribe.transcribe")
	defer span.End()

	key := contentcache.KeyFor(audio)

	storedPath := ""
	if s.audio != nil {
		path, err := s.audio.Store(ctx, audio, displayName)
		if err != nil {
			s.logger.Warn("audio persistence failed, continuing", "file", displayName, "error", err)
		} else {
			storedPath = path
		}
	}

	if cached, ok := s.cache.Get(ctx, key, contentcache.KindTranscript); ok {
		s.metrics.ObserveCacheLookup(string(contentcache.KindTranscript), true)
		s.metrics.ObserveTranscription("ok")
		s.logger.Info("transcript served from cache", "key", key.String(), "file", displayName)
		return Result{
			Key:              key,
			Transcript:       string(cached),
			AudioPath:        storedPath,
			Format:           FormatOf(displayName),
			OriginalFilename: displayName,
			CacheHit:         true,
		}, nil
	}
	s.metrics.ObserveCacheLookup(string(contentcache.KindTranscript), false)

	text, err := s.client.Transcribe(ctx, Request{
		Audio:    audio,
		Filename: displayName,
		Format:   FormatOf(displayName),
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTranscription("error")
		s.cleanupStored(ctx, storedPath)
		return Result{}, &TranscriptionError{Filename: displayName, Err: err}
	}

	if err := s.cache.Put(ctx, key, contentcache.KindTranscript, []byte(text)); err != nil {
		s.logger.Warn("transcript cache write failed", "key", key.String(), "error", err)
	}

	s.metrics.ObserveTranscription("ok")
	s.logger.Info("transcription completed", "key", key.String(), "file", displayName, "chars", len(text))
	return Result{
		Key:              key,
		Transcript:       text,
		AudioPath:        storedPath,
		Format:           FormatOf(displayName),
		OriginalFilename: displayName,
	}, nil
}

func (s *Service) cleanupStored(ctx context.Context, storedPath string) {
	if s.audio == nil || storedPath == "" {
		return
	}
	if err := s.audio.Delete(ctx, storedPath); err != nil {
		s.logger.Warn("orphaned audio cleanup failed", "path", storedPath, "error", err)
	}
}
