package extract

import (
	"context"

	"github.com/atcdesk/radioscribe/pkg/logging"
)

// FallbackClient tries a primary model capability and falls back to a
// secondary one when the primary fails. Both failing returns the
// secondary's error with the primary's logged.
type FallbackClient struct {
	primary   LLMClient
	secondary LLMClient
	logger    *logging.Logger
}

func NewFallbackClient(primary, secondary LLMClient, logger *logging.Logger) *FallbackClient {
	if primary == nil {
		panic("extract: primary client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{
		primary:   primary,
		secondary: secondary,
		logger:    logger.Component("extract.fallback"),
	}
}

func (c *FallbackClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	if c.secondary == nil {
		return LLMResponse{}, err
	}
	c.logger.Warn("primary model failed, using fallback", "error", err)
	return c.secondary.Complete(ctx, req)
}
