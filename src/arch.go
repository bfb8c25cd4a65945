package storybot

import "strings"

// Draft is the in-progress user input before submission.
// Selection fields hold catalog ids; an empty id means no selection.
type Draft struct {
	Prompt    string `json:"prompt"`
	StoryType string `json:"storyType,omitempty"`
	Character string `json:"character,omitempty"`
	Setting   string `json:"setting,omitempty"`
}

// TrimmedPrompt returns the prompt without surrounding whitespace.
func (d Draft) TrimmedPrompt() string {
	return strings.TrimSpace(d.Prompt)
}

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig is the only configuration a request is ever sent with.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.9,
	TopK:            1,
	TopP:            1,
	MaxOutputTokens: 2048,
}

// GenerationRequest is built once per submission and discarded after sending.
type GenerationRequest struct {
	Instruction string
	Config      GenerationConfig
}

// NewGenerationRequest composes the instruction for d and pairs it with
// the fixed generation parameters.
func NewGenerationRequest(mode PromptMode, d Draft) GenerationRequest {
	return GenerationRequest{
		Instruction: Compose(mode, d),
		Config:      DefaultGenerationConfig,
	}
}

// generateContentRequest is the JSON body of a generateContent call.
type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateContentResponse mirrors the success envelope. Pointers let the
// decoder tell a missing level apart from an empty one.
type generateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func newGenerateContentRequest(r GenerationRequest) generateContentRequest {
	return generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: r.Instruction}}},
		},
		GenerationConfig: r.Config,
	}
}
