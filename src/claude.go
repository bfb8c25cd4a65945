package storybot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const providerClaude = "claude"

// ClaudeClient generates stories through the Anthropic messages API with
// the same sampling parameters as GeminiClient.
type ClaudeClient struct {
	opts   clientOptions
	logger *zap.Logger
}

func NewClaudeClient(opts ...ClientOption) *ClaudeClient {
	o := buildOptions(clientOptions{
		model: string(anthropic.ModelClaude3_5SonnetLatest),
	}, opts)
	return &ClaudeClient{
		opts:   o,
		logger: o.logger.With(zap.String("provider", providerClaude), zap.String("model", o.model)),
	}
}

// client is built per call because the key may differ between callers.
func (c *ClaudeClient) client(apiKey string) *anthropic.Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(c.opts.httpClient),
		option.WithMaxRetries(0),
	}
	if c.opts.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.opts.baseURL))
	}
	return anthropic.NewClient(reqOpts...)
}

func (c *ClaudeClient) Generate(ctx context.Context, instruction, apiKey string) (string, error) {
	cfg := DefaultGenerationConfig
	started := time.Now()
	c.logger.Info("Starting story generation", zap.Int("instructionBytes", len(instruction)))

	message, err := c.client(apiKey).Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:       anthropic.F(anthropic.Model(c.opts.model)),
			MaxTokens:   anthropic.F(int64(cfg.MaxOutputTokens)),
			Temperature: anthropic.F(cfg.Temperature),
			TopK:        anthropic.F(int64(cfg.TopK)),
			TopP:        anthropic.F(cfg.TopP),
			Messages: anthropic.F([]anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(instruction),
				),
			}),
		},
	)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("API error", zap.Int("status", apiErr.StatusCode), zap.Error(err))
			observeGeneration(providerClaude, statusTransport, started, "")
			return "", &TransportError{StatusCode: apiErr.StatusCode}
		}
		c.logger.Error("Error generating story", zap.Error(err))
		observeGeneration(providerClaude, statusTransport, started, "")
		return "", &TransportError{Err: fmt.Errorf("claude api error: %w", err)}
	}

	if len(message.Content) == 0 || message.Content[0].Text == "" {
		c.logger.Error("Unexpected response format", zap.Int("blocks", len(message.Content)))
		observeGeneration(providerClaude, statusEnvelope, started, "")
		return "", &EnvelopeError{Err: errors.New("empty response from claude")}
	}

	story := message.Content[0].Text
	c.logger.Info("Story generated",
		zap.Duration("duration", time.Since(started)),
		zap.Int("storyChars", len(story)))
	observeGeneration(providerClaude, statusSuccess, started, story)
	return story, nil
}
