package generator

import (
	"errors"
	"fmt"
	"time"

	storybot "github.com/opd-ai/storybot/src"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

var (
	// ErrInFlight is returned when a submission is already pending. No
	// request is issued and no notification is emitted.
	ErrInFlight = errors.New("generation already in progress")
	// ErrDisposed is returned once the session has been torn down.
	ErrDisposed = errors.New("session disposed")
)

// Variant is the visual style of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient user-facing alert.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event is what a session pushes to its emitter: either a state change or
// a notification.
type Event struct {
	Type         string        `json:"type"`
	State        State         `json:"state"`
	Notification *Notification `json:"notification,omitempty"`
	Story        string        `json:"story,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

const (
	EventState        = "state"
	EventNotification = "notification"
)

// KeyEvent is a key press in the prompt field.
type KeyEvent struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
}

// IsSubmitKey reports whether ev submits instead of inserting a newline.
func IsSubmitKey(ev KeyEvent) bool {
	return ev.Key == "Enter" && !ev.Shift
}

// Snapshot is a copy of the session's presentation state.
type Snapshot struct {
	State      State               `json:"state"`
	Loading    bool                `json:"loading"`
	Story      string              `json:"story"`
	Draft      storybot.Draft      `json:"draft"`
	HasAPIKey  bool                `json:"hasApiKey"`
	KeyMode    storybot.KeyMode    `json:"keyMode"`
	PromptMode storybot.PromptMode `json:"promptMode"`
}

func newNotification(title, description string, variant Variant) Notification {
	return Notification{
		Title:       title,
		Description: description,
		Variant:     variant,
		Timestamp:   time.Now(),
	}
}

// providerName is the display name of a configured provider.
func providerName(provider string) string {
	switch provider {
	case storybot.ProviderClaude:
		return "Claude"
	default:
		return "Gemini"
	}
}

func validationNotification(err error, provider string) Notification {
	var v *storybot.ValidationError
	if errors.As(err, &v) && v.Field == "apiKey" {
		return newNotification("API Key Required",
			fmt.Sprintf("Please enter your %s API key to generate stories.", providerName(provider)),
			VariantDestructive)
	}
	return newNotification("Please enter a story prompt",
		"We need a creative prompt to generate your story!", VariantDestructive)
}

func successNotification() Notification {
	return newNotification("Story Generated!", "Your creative story is ready to read.", VariantDefault)
}

func failureNotification(mode storybot.KeyMode) Notification {
	description := "Please try a different prompt."
	if mode == storybot.KeyCaller {
		description = "Please check your API key and try again."
	}
	return newNotification("Error generating story", description, VariantDestructive)
}
