package nlquery

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4

// Completer sends one system and user message pair to a language model and
// returns its reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAICompleter is a Completer backed by the OpenAI chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer. An empty apiKey yields a completer
// that always reports ErrAssistantUnavailable; baseURL overrides the API root.
func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		return &OpenAICompleter{model: model}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("%w: no API key configured", ErrAssistantUnavailable)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		// A zero temperature is omitted from the request body, which the API
		// treats as its default of 1.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrAssistantUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
