package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atcdesk/radioscribe/internal/extract"
	"github.com/atcdesk/radioscribe/internal/session"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

const chatHistoryBlob = "chat.history"

// maxChatHistory bounds the turns carried between requests so prompts
// stay a predictable size.
const maxChatHistory = 20

const chatSystemPrompt = "You are a helpful assistant for an air traffic communications workspace. Answer questions about uploaded recordings, transcripts, and aviation radio procedure. Keep replies short and factual."

// ChatFallback answers turns no assistant claims, carrying per-session
// history through the session store.
type ChatFallback struct {
	llm      extract.LLMClient
	sessions session.Store
	logger   *logging.Logger
}

func NewChatFallback(llm extract.LLMClient, sessions session.Store, logger *logging.Logger) *ChatFallback {
	if llm == nil {
		panic("pipeline: llm client cannot be nil")
	}
	if sessions == nil {
		panic("pipeline: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatFallback{
		llm:      llm,
		sessions: sessions,
		logger:   logger.Component("pipeline.chat"),
	}
}

func (c *ChatFallback) Respond(ctx context.Context, sessionID, text string) (string, error) {
	history := c.loadHistory(ctx, sessionID)
	history = append(history, extract.ChatMessage{Role: extract.ChatRoleUser, Content: text})

	resp, err := c.llm.Complete(ctx, extract.LLMRequest{
		System:   []string{chatSystemPrompt},
		Messages: history,
	})
	if err != nil {
		return "", fmt.Errorf("pipeline: chat completion failed: %w", err)
	}

	history = append(history, extract.ChatMessage{Role: extract.ChatRoleAssistant, Content: resp.Text})
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	c.saveHistory(ctx, sessionID, history)
	return resp.Text, nil
}

func (c *ChatFallback) loadHistory(ctx context.Context, sessionID string) []extract.ChatMessage {
	data, ok, err := c.sessions.GetBlob(ctx, sessionID, chatHistoryBlob)
	if err != nil {
		c.logger.Warn("chat history load failed", "session", sessionID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var history []extract.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		c.logger.Warn("chat history undecodable, starting fresh", "session", sessionID, "error", err)
		return nil
	}
	return history
}

func (c *ChatFallback) saveHistory(ctx context.Context, sessionID string, history []extract.ChatMessage) {
	data, err := json.Marshal(history)
	if err != nil {
		c.logger.Warn("chat history marshal failed", "session", sessionID, "error", err)
		return
	}
	if err := c.sessions.PutBlob(ctx, sessionID, chatHistoryBlob, data); err != nil {
		c.logger.Warn("chat history save failed", "session", sessionID, "error", err)
	}
}
