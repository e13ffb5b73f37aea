package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atcdesk/radioscribe/internal/contentcache"
)

type scriptedLLM struct {
	calls     int
	responses []string
	err       error
	lastReq   LLMRequest
}

func (m *scriptedLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return LLMResponse{}, m.err
	}
	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return LLMResponse{Text: m.responses[idx]}, nil
}

const towerResponse = "```json\n" + `[
	{"role": "pilot", "message": "Tower, Delta 789, ready for departure.", "annotations": [{"text": "Delta 789", "type": "who"}]},
	{"role": "atc", "message": "Delta 789, line up and wait runway 27.", "annotations": [{"text": "line up and wait runway 27", "type": "what"}]}
]` + "\n```"

func newExtractService(t *testing.T, llm LLMClient) *Service {
	t.Helper()
	cache, err := contentcache.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	return NewService(llm, cache, nil, nil)
}

func TestExtractFreshDecodeAndCache(t *testing.T) {
	llm := &scriptedLLM{responses: []string{towerResponse}}
	svc := newExtractService(t, llm)
	ctx := context.Background()
	key := contentcache.KeyFor([]byte("recording"))

	turns, err := svc.Extract(ctx, Request{Transcript: "Tower, Delta 789...", ContentKey: key})
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RolePilot, turns[0].Role)
	assert.Equal(t, RoleATC, turns[1].Role)

	// Second call with the same key must come from cache.
	again, err := svc.Extract(ctx, Request{Transcript: "Tower, Delta 789...", ContentKey: key})
	require.NoError(t, err)
	assert.Equal(t, turns, again)
	assert.Equal(t, 1, llm.calls)
}

func TestExtractWithoutKeySkipsCache(t *testing.T) {
	llm := &scriptedLLM{responses: []string{towerResponse}}
	svc := newExtractService(t, llm)
	ctx := context.Background()

	_, err := svc.Extract(ctx, Request{Transcript: "Tower, Delta 789..."})
	require.NoError(t, err)
	_, err = svc.Extract(ctx, Request{Transcript: "Tower, Delta 789..."})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
}

func TestExtractCorruptCacheEntryRecomputes(t *testing.T) {
	cache, err := contentcache.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	llm := &scriptedLLM{responses: []string{towerResponse}}
	svc := NewService(llm, cache, nil, nil)
	ctx := context.Background()
	key := contentcache.KeyFor([]byte("recording"))

	require.NoError(t, cache.Put(ctx, key, contentcache.KindParsedConversation, []byte("{ not json")))

	turns, err := svc.Extract(ctx, Request{Transcript: "Tower, Delta 789...", ContentKey: key})
	require.NoError(t, err)
	assert.Len(t, turns, 2)
	assert.Equal(t, 1, llm.calls)
}

func TestExtractCachedTurnsAreRenormalized(t *testing.T) {
	cache, err := contentcache.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	llm := &scriptedLLM{responses: []string{towerResponse}}
	svc := NewService(llm, cache, nil, nil)
	ctx := context.Background()
	key := contentcache.KeyFor([]byte("recording"))

	stale := `[{"role": "tower", "message": "hold short", "annotations": [{"text": "winds shifting", "type": "why"}]}]`
	require.NoError(t, cache.Put(ctx, key, contentcache.KindParsedConversation, []byte(stale)))

	turns, err := svc.Extract(ctx, Request{Transcript: "irrelevant", ContentKey: key})
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, RoleATC, turns[0].Role)
	assert.Empty(t, turns[0].Annotations)
	assert.Equal(t, 0, llm.calls)
}

func TestExtractModelFailure(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("rate limited")}
	svc := newExtractService(t, llm)

	_, err := svc.Extract(context.Background(), Request{Transcript: "Tower..."})
	require.Error(t, err)
	assert.ErrorContains(t, err, "model call failed")
}

func TestExtractUndecodableResponseFails(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"Sorry, I cannot parse that transcript."}}
	svc := newExtractService(t, llm)

	_, err := svc.Extract(context.Background(), Request{Transcript: "Tower..."})
	var perr *ParseValidationError
	require.ErrorAs(t, err, &perr)
}

func TestExtractEmptyTranscript(t *testing.T) {
	llm := &scriptedLLM{responses: []string{towerResponse}}
	svc := newExtractService(t, llm)

	turns, err := svc.Extract(context.Background(), Request{Transcript: "   "})
	require.NoError(t, err)
	assert.Empty(t, turns)
	assert.Equal(t, 0, llm.calls)
}

func TestExtractListenerIdentityReachesPrompt(t *testing.T) {
	llm := &scriptedLLM{responses: []string{towerResponse}}
	svc := newExtractService(t, llm)

	_, err := svc.Extract(context.Background(), Request{
		Transcript:       "Tower, Delta 789...",
		ListenerIdentity: "Delta 789",
	})
	require.NoError(t, err)
	require.Len(t, llm.lastReq.Messages, 1)
	assert.True(t, strings.Contains(llm.lastReq.Messages[0].Content, "Delta 789"))
	assert.True(t, strings.Contains(llm.lastReq.Messages[0].Content, "highlight_for_user"))
}

func TestFallbackClient(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		primary := &scriptedLLM{responses: []string{"ok"}}
		secondary := &scriptedLLM{responses: []string{"fallback"}}
		client := NewFallbackClient(primary, secondary, nil)

		resp, err := client.Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Text)
		assert.Equal(t, 0, secondary.calls)
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &scriptedLLM{err: errors.New("quota")}
		secondary := &scriptedLLM{responses: []string{"fallback"}}
		client := NewFallbackClient(primary, secondary, nil)

		resp, err := client.Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "fallback", resp.Text)
	})

	t.Run("no secondary", func(t *testing.T) {
		primary := &scriptedLLM{err: errors.New("quota")}
		client := NewFallbackClient(primary, nil, nil)

		_, err := client.Complete(context.Background(), LLMRequest{})
		require.Error(t, err)
	})
}
