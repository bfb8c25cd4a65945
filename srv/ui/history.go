package ui

import (
	"sync"

	"github.com/opd-ai/storybot/srv/generator"
)

const maxHistory = 50

// MessageHistory keeps the most recent events of one session so a page
// reload or a late WebSocket can catch up.
type MessageHistory struct {
	Messages []generator.Event
	mu       sync.RWMutex
}

func (h *MessageHistory) AddMessage(msg generator.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Messages = append(h.Messages, msg)
	if len(h.Messages) > maxHistory {
		h.Messages = h.Messages[len(h.Messages)-maxHistory:]
	}
}

func (h *MessageHistory) GetMessages() []generator.Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	messages := make([]generator.Event, len(h.Messages))
	copy(messages, h.Messages)
	return messages
}

// Notifications returns only the notification events, oldest first.
func (h *MessageHistory) Notifications() []generator.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []generator.Notification
	for _, msg := range h.Messages {
		if msg.Type == generator.EventNotification && msg.Notification != nil {
			out = append(out, *msg.Notification)
		}
	}
	return out
}

// LastNotification returns the newest notification, if any.
func (h *MessageHistory) LastNotification() (generator.Notification, bool) {
	notes := h.Notifications()
	if len(notes) == 0 {
		return generator.Notification{}, false
	}
	return notes[len(notes)-1], true
}
