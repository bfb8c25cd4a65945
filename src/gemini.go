package storybot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel   = "gemini-pro"

	providerGemini = "gemini"
)

// GeminiClient calls the generateContent endpoint of the Google
// generative language API.
type GeminiClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeminiClient returns a client for the v1beta gemini-pro endpoint
// unless overridden by opts.
func NewGeminiClient(opts ...ClientOption) *GeminiClient {
	o := buildOptions(clientOptions{
		baseURL: DefaultGeminiBaseURL,
		model:   DefaultGeminiModel,
	}, opts)
	return &GeminiClient{
		baseURL:    strings.TrimRight(o.baseURL, "/"),
		model:      o.model,
		httpClient: o.httpClient,
		logger:     o.logger.With(zap.String("provider", providerGemini), zap.String("model", o.model)),
	}
}

func (c *GeminiClient) endpoint(apiKey string) string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(apiKey))
}

// Generate sends instruction with the fixed generation parameters and
// returns the first candidate's text unmodified.
func (c *GeminiClient) Generate(ctx context.Context, instruction, apiKey string) (string, error) {
	body, err := encodeRequest(GenerationRequest{Instruction: instruction, Config: DefaultGenerationConfig})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(apiKey), bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	c.logger.Info("Starting story generation", zap.Int("instructionBytes", len(instruction)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Error generating story", zap.Error(redactKey(err, apiKey)))
		observeGeneration(providerGemini, statusTransport, started, "")
		return "", &TransportError{Err: redactKey(err, apiKey)}
	}
	defer resp.Body.Close()

	c.logger.Info("API response status", zap.Int("status", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observeGeneration(providerGemini, statusTransport, started, "")
		return "", &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logAPIError(c.logger, resp.StatusCode, raw)
		observeGeneration(providerGemini, statusTransport, started, "")
		return "", &TransportError{StatusCode: resp.StatusCode}
	}

	story, err := decodeStory(raw)
	if err != nil {
		c.logger.Error("Unexpected response format", zap.Error(err), zap.Int("bodyBytes", len(raw)))
		observeGeneration(providerGemini, statusEnvelope, started, "")
		return "", err
	}

	c.logger.Info("Story generated",
		zap.Duration("duration", time.Since(started)),
		zap.Int("storyChars", len(story)))
	observeGeneration(providerGemini, statusSuccess, started, story)
	return story, nil
}

// encodeRequest renders the body without HTML escaping and without the
// trailing newline json.Encoder adds.
func encodeRequest(r GenerationRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(newGenerateContentRequest(r)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeStory extracts candidates[0].content.parts[0].text. Every missing
// level is an EnvelopeError.
func decodeStory(raw []byte) (string, error) {
	var out generateContentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &EnvelopeError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	switch {
	case len(out.Candidates) == 0:
		return "", &EnvelopeError{Err: errors.New("no candidates")}
	case out.Candidates[0].Content == nil:
		return "", &EnvelopeError{Err: errors.New("candidate has no content")}
	case len(out.Candidates[0].Content.Parts) == 0:
		return "", &EnvelopeError{Err: errors.New("content has no parts")}
	case out.Candidates[0].Content.Parts[0].Text == nil:
		return "", &EnvelopeError{Err: errors.New("part has no text")}
	}
	return *out.Candidates[0].Content.Parts[0].Text, nil
}

// logAPIError records whatever detail the error body carries. The detail
// is for diagnostics only and never reaches the caller.
func logAPIError(logger *zap.Logger, status int, raw []byte) {
	fields := []zap.Field{zap.Int("status", status)}
	if gjson.ValidBytes(raw) {
		detail := gjson.GetManyBytes(raw, "error.code", "error.status", "error.message")
		fields = append(fields,
			zap.Int64("errorCode", detail[0].Int()),
			zap.String("errorStatus", detail[1].String()),
			zap.String("errorMessage", detail[2].String()))
	} else {
		fields = append(fields, zap.ByteString("body", raw))
	}
	logger.Error("API error", fields...)
}

// redactKey masks the key in errors that echo the request URL.
func redactKey(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), url.QueryEscape(apiKey)) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), url.QueryEscape(apiKey), "********"))
}
