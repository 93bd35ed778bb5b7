package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
)

// Client is the boundary to the language model. The compiler only needs a
// single-turn completion, so the interface stays small enough to script in
// tests.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AnthropicClient implements Client against the Anthropic Messages API.
// Credentials come from the environment (ANTHROPIC_API_KEY).
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

func NewAnthropicClient(model string, maxTokens int64, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	c.logger.Debug("requesting completion", "model", c.model, "user_len", len(user))

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic response contained no text block")
}
