// Package pipeline composes transcription and conversation extraction
// into the audio handling flow the dispatcher and HTTP handlers share.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/atcdesk/radioscribe/internal/extract"
	"github.com/atcdesk/radioscribe/internal/transcribe"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

// Result is one processed recording.
type Result struct {
	Key              string                     `json:"key"`
	Transcript       string                     `json:"transcript"`
	AudioPath        string                     `json:"audio_path,omitempty"`
	Format           string                     `json:"format"`
	OriginalFilename string                     `json:"original_filename"`
	CacheHit         bool                       `json:"cache_hit"`
	Turns            []extract.ConversationTurn `json:"turns,omitempty"`
	ParseError       string                     `json:"parse_error,omitempty"`
}

// Pipeline runs a recording through transcription and extraction.
// Extraction failure is not fatal: the raw transcript still comes back,
// with the parse failure noted.
type Pipeline struct {
	transcriber *transcribe.Service
	extractor   *extract.Service
	logger      *logging.Logger
}

func New(transcriber *transcribe.Service, extractor *extract.Service, logger *logging.Logger) *Pipeline {
	if transcriber == nil {
		panic("pipeline: transcriber cannot be nil")
	}
	if extractor == nil {
		panic("pipeline: extractor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		transcriber: transcriber,
		extractor:   extractor,
		logger:      logger.Component("pipeline"),
	}
}

// Process transcribes and extracts one recording.
func (p *Pipeline) Process(ctx context.Context, audio []byte, filename string) (Result, error) {
	tr, err := p.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Key:              tr.Key.String(),
		Transcript:       tr.Transcript,
		AudioPath:        tr.AudioPath,
		Format:           tr.Format,
		OriginalFilename: tr.OriginalFilename,
		CacheHit:         tr.CacheHit,
	}

	turns, err := p.extractor.Extract(ctx, extract.Request{
		Transcript: tr.Transcript,
		ContentKey: tr.Key,
	})
	if err != nil {
		p.logger.Warn("conversation extraction failed, returning raw transcript", "file", filename, "error", err)
		res.ParseError = err.Error()
		return res, nil
	}
	res.Turns = turns
	return res, nil
}

// ProcessAudio implements the dispatcher's audio collaborator, rendering
// the result as chat-ready markdown.
func (p *Pipeline) ProcessAudio(ctx context.Context, audio []byte, filename string) (string, error) {
	res, err := p.Process(ctx, audio, filename)
	if err != nil {
		return "", err
	}
	return renderResult(res), nil
}

func renderResult(res Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Audio transcription complete for `%s`.\n\n", res.OriginalFilename)
	if len(res.Turns) > 0 {
		b.WriteString("#### ATC Dialog\n\n")
		for _, turn := range res.Turns {
			fmt.Fprintf(&b, "**%s**: %s\n\n", strings.ToUpper(turn.Role), turn.Message)
		}
	} else if res.ParseError != "" {
		b.WriteString("#### ATC Dialog\nCould not parse the conversation structure. The raw transcript is below.\n\n")
	}
	fmt.Fprintf(&b, "Raw transcript:\n%s", res.Transcript)
	return strings.TrimSpace(b.String())
}
