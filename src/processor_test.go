package storybot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	calls       int
	instruction string
	apiKey      string
	story       string
	err         error
}

func (g *recordingGenerator) Generate(_ context.Context, instruction, apiKey string) (string, error) {
	g.calls++
	g.instruction = instruction
	g.apiKey = apiKey
	return g.story, g.err
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		mode  KeyMode
		key   string
		field string
	}{
		{"empty prompt", Draft{Prompt: ""}, KeyOperator, "", "prompt"},
		{"whitespace prompt", Draft{Prompt: " \t\n"}, KeyCaller, "k", "prompt"},
		{"prompt checked before key", Draft{Prompt: " "}, KeyCaller, "", "prompt"},
		{"missing key", Draft{Prompt: "p"}, KeyCaller, "", "apiKey"},
		{"whitespace key", Draft{Prompt: "p"}, KeyCaller, "   ", "apiKey"},
		{"operator ignores key", Draft{Prompt: "p"}, KeyOperator, "", ""},
		{"valid", Draft{Prompt: "p"}, KeyCaller, "k", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.draft, tt.mode, tt.key)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.field, v.Field)
		})
	}
}

func TestGenerateStory(t *testing.T) {
	t.Run("validation failure makes no call", func(t *testing.T) {
		gen := &recordingGenerator{}
		_, err := GenerateStory(context.Background(), gen, PromptPlain, KeyCaller, Draft{Prompt: "   "}, "k")
		assert.True(t, IsValidation(err))
		assert.Zero(t, gen.calls)
	})

	t.Run("composes and calls once", func(t *testing.T) {
		gen := &recordingGenerator{story: "X"}
		story, err := GenerateStory(context.Background(), gen, PromptConfigured, KeyCaller,
			Draft{Prompt: "p", Setting: "outer-space"}, " key ")
		require.NoError(t, err)
		assert.Equal(t, "X", story)
		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, " key ", gen.apiKey)
		assert.Contains(t, gen.instruction, "Outer Space")
	})

	t.Run("generator errors pass through", func(t *testing.T) {
		gen := &recordingGenerator{err: &TransportError{StatusCode: 500}}
		_, err := GenerateStory(context.Background(), gen, PromptPlain, KeyOperator, Draft{Prompt: "p"}, "")
		assert.True(t, IsTransport(err))
	})
}
