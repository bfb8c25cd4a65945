package ui

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/opd-ai/storybot/srv/generator"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// subscribers fans session events out to connected WebSockets.
type subscribers struct {
	mu sync.Mutex
	m  map[string]map[chan generator.Event]struct{}
}

func newSubscribers() *subscribers {
	return &subscribers{m: make(map[string]map[chan generator.Event]struct{})}
}

func (s *subscribers) add(sessionID string) chan generator.Event {
	ch := make(chan generator.Event, 32)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[sessionID] == nil {
		s.m[sessionID] = make(map[chan generator.Event]struct{})
	}
	s.m[sessionID][ch] = struct{}{}
	return ch
}

func (s *subscribers) remove(sessionID string, ch chan generator.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[sessionID][ch]; !ok {
		return
	}
	delete(s.m[sessionID], ch)
	if len(s.m[sessionID]) == 0 {
		delete(s.m, sessionID)
	}
	close(ch)
}

// broadcast never blocks; a subscriber with a full buffer misses the event
// and can catch up from history.
func (s *subscribers) broadcast(sessionID string, ev generator.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.m[sessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *subscribers) closeAll(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.m[sessionID] {
		close(ch)
	}
	delete(s.m, sessionID)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (ui *GeneratorUI) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if chi.URLParam(r, "sessionID") != id {
		http.Error(w, "Invalid session", http.StatusBadRequest)
		return
	}
	ui.session(id)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ui.logger.Warn("WebSocket upgrade failed", zap.String("session", id), zap.Error(err))
		return
	}
	ui.logger.Info("WebSocket connection established", zap.String("session", id))

	updates := ui.subs.add(id)
	done := make(chan struct{})

	defer func() {
		ui.subs.remove(id, updates)
		if err := conn.Close(); err != nil {
			ui.logger.Debug("Error closing WebSocket connection", zap.Error(err))
		}
		ui.logger.Info("WebSocket connection closed", zap.String("session", id))
	}()

	for _, msg := range ui.history(id).GetMessages() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			ui.logger.Warn("Failed to send historical message", zap.Error(err))
			return
		}
	}

	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					ui.logger.Warn("WebSocket error", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				ui.logger.Warn("Failed to send message", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
