package storybot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Generator turns one instruction into one story. Implementations issue
// exactly one remote request per call and never retry.
type Generator interface {
	Generate(ctx context.Context, instruction, apiKey string) (string, error)
}

type clientOptions struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Generator backend.
type ClientOption func(*clientOptions)

// WithBaseURL overrides the endpoint base. Empty values are ignored.
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithModel overrides the model identifier. Empty values are ignored.
func WithModel(m string) ClientOption {
	return func(o *clientOptions) {
		if m != "" {
			o.model = m
		}
	}
}

// WithHTTPClient sets the client used for outbound requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(defaults clientOptions, opts []ClientOption) clientOptions {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = http.DefaultClient
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// NewGenerator returns the backend named by cfg.Provider.
func NewGenerator(cfg *Config, logger *zap.Logger) (Generator, error) {
	opts := []ClientOption{
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithTimeout(cfg.HTTPTimeout),
		WithLogger(logger),
	}
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(opts...), nil
	case ProviderClaude:
		return NewClaudeClient(opts...), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
