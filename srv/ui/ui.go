package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	secure "github.com/srikrsna/security-headers"
	"go.uber.org/zap"

	storybot "github.com/opd-ai/storybot/src"
	"github.com/opd-ai/storybot/srv/generator"
	"github.com/opd-ai/storybot/srv/util"
)

//go:embed templates/*
var templateFS embed.FS

const sessionCookie = "session_id"

type ctxKey struct{}

// GeneratorUI serves the story generator page and its JSON/WebSocket API.
type GeneratorUI struct {
	router    chi.Router
	cfg       *storybot.Config
	gen       storybot.Generator
	logger    *zap.Logger
	templates *template.Template

	// sessions holds *generator.Session keyed by session id.
	sessions   *cache.Cache
	sessionsM  sync.Mutex
	msgHistory map[string]*MessageHistory
	historyM   sync.RWMutex
	subs       *subscribers
}

func NewGeneratorUI(cfg *storybot.Config, gen storybot.Generator, logger *zap.Logger) *GeneratorUI {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ui := &GeneratorUI{
		router:     chi.NewRouter(),
		cfg:        cfg,
		gen:        gen,
		logger:     logger,
		templates:  template.Must(template.ParseFS(templateFS, "templates/*.html")),
		sessions:   cache.New(ttl, 10*time.Minute),
		msgHistory: make(map[string]*MessageHistory),
		subs:       newSubscribers(),
	}
	ui.sessions.OnEvicted(ui.cleanupSession)
	ui.setupRoutes()
	return ui
}

// cleanupSession runs when go-cache evicts a session.
func (ui *GeneratorUI) cleanupSession(sessionID string, v interface{}) {
	if s, ok := v.(*generator.Session); ok {
		s.Dispose()
	}
	ui.historyM.Lock()
	delete(ui.msgHistory, sessionID)
	ui.historyM.Unlock()
	ui.subs.closeAll(sessionID)
	ui.logger.Info("Cleaned up session", zap.String("session", sessionID))
}

// session returns the live session for id, creating it on first use. Every
// access extends its expiry.
func (ui *GeneratorUI) session(sessionID string) *generator.Session {
	ui.sessionsM.Lock()
	defer ui.sessionsM.Unlock()

	if v, ok := ui.sessions.Get(sessionID); ok {
		s := v.(*generator.Session)
		ui.sessions.SetDefault(sessionID, s)
		return s
	}

	// Get misses expired entries the janitor has not removed yet. Evict them
	// so the stale session is disposed before its id is reused.
	ui.sessions.DeleteExpired()

	s := generator.NewSession(sessionID, generator.Options{
		Generator:   ui.gen,
		PromptMode:  ui.cfg.PromptMode,
		KeyMode:     ui.cfg.KeyMode,
		OperatorKey: ui.cfg.APIKey,
		Provider:    ui.cfg.Provider,
		Logger:      ui.logger,
	})
	s.SetEmitter(func(ev generator.Event) {
		ui.history(sessionID).AddMessage(ev)
		ui.subs.broadcast(sessionID, ev)
	})
	ui.sessions.SetDefault(sessionID, s)
	ui.logger.Info("Created session", zap.String("session", sessionID))
	return s
}

func (ui *GeneratorUI) history(sessionID string) *MessageHistory {
	ui.historyM.Lock()
	defer ui.historyM.Unlock()
	h, ok := ui.msgHistory[sessionID]
	if !ok {
		h = &MessageHistory{Messages: make([]generator.Event, 0)}
		ui.msgHistory[sessionID] = h
	}
	return h
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// sessionMiddleware makes sure every request carries a valid session id.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookie); err == nil && isValidSession(cookie.Value) {
			id = cookie.Value
		} else {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   86400,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (ui *GeneratorUI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ui.router.ServeHTTP(w, r)
}

func (ui *GeneratorUI) setupRoutes() {
	csp := &secure.CSP{
		Value:      `default-src 'self'; script-src 'self' {{nonce}}; style-src 'self' 'unsafe-inline'; connect-src 'self'; object-src 'none'; base-uri 'none'; frame-ancestors 'none'`,
		ByteSize: 16,
	}

	ui.router.Use(middleware.RequestID)
	ui.router.Use(util.LoggingMiddleware(ui.logger))
	ui.router.Use(util.RecoveryMiddleware(ui.logger))

	ui.router.Get("/health", ui.handleHealth)
	ui.router.Handle("/metrics", promhttp.Handler())

	ui.router.With(sessionMiddleware).Get("/ws/{sessionID}", ui.handleWebSocket)

	ui.router.Group(func(r chi.Router) {
		r.Use(csp.Middleware())
		r.Use(sessionMiddleware)

		r.Get("/", ui.handleHome)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", ui.handleState)
			r.Get("/catalog", ui.handleCatalog)
			r.Post("/draft", ui.handleDraft)
			r.Post("/suggestion/{index}", ui.handleSuggestion)
			r.Post("/submit", ui.handleSubmit)
			r.Post("/key", ui.handleKey)
		})
	})
}
