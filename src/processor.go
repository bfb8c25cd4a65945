package storybot

import (
	"context"
	"strings"
)

// ValidateDraft checks the submit preconditions. In caller key mode the
// key must be non-empty after trimming too.
func ValidateDraft(d Draft, mode KeyMode, apiKey string) error {
	if d.TrimmedPrompt() == "" {
		return &ValidationError{Field: "prompt", Message: "prompt is empty"}
	}
	if mode == KeyCaller && strings.TrimSpace(apiKey) == "" {
		return &ValidationError{Field: "apiKey", Message: "API key is empty"}
	}
	return nil
}

// GenerateStory validates d, composes its instruction and issues a single
// call to gen.
func GenerateStory(ctx context.Context, gen Generator, promptMode PromptMode, keyMode KeyMode, d Draft, apiKey string) (string, error) {
	if err := ValidateDraft(d, keyMode, apiKey); err != nil {
		return "", err
	}
	req := NewGenerationRequest(promptMode, d)
	return gen.Generate(ctx, req.Instruction, apiKey)
}
