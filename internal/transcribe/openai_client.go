package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type transcriptionAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAIClient transcribes audio through the Whisper API.
type OpenAIClient struct {
	client transcriptionAPI
	model  string
}

// NewOpenAIClient wraps an OpenAI API client. model defaults to whisper-1.
func NewOpenAIClient(client transcriptionAPI, model string) *OpenAIClient {
	if client == nil {
		panic("transcribe: openai client cannot be nil")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIClient{client: client, model: model}
}

func (c *OpenAIClient) Transcribe(ctx context.Context, req Request) (string, error) {
	if len(req.Audio) == 0 {
		return "", fmt.Errorf("transcribe: empty audio payload")
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: req.Filename,
		Reader:   bytes.NewReader(req.Audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: whisper call failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
