package extraction

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// langchainCompleter implements Completer over langchaingo's OpenAI chat
// model. Temperature defaults to 0 for deterministic extraction.
type langchainCompleter struct {
	llm         llms.Model
	temperature float64
}

// NewCompleter creates the default OpenAI-backed completer.
func NewCompleter(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &langchainCompleter{
		llm:         llm,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends the system instruction and user content as one chat
// exchange and returns the first choice's text.
func (c *langchainCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}

	resp, err := c.llm.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	return resp.Choices[0].Content, nil
}

var _ Completer = (*langchainCompleter)(nil)
