package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	secure "github.com/srikrsna/security-headers"
	"go.uber.org/zap"

	storybot "github.com/opd-ai/storybot/src"
	"github.com/opd-ai/storybot/srv/generator"
)

type pageData struct {
	Nonce       string
	SessionID   string
	CallerKey   bool
	Configured  bool
	StoryTypes  []storybot.Option
	Characters  []storybot.Option
	Settings    []storybot.Option
	Suggestions []string
	Snapshot    generator.Snapshot
}

func (ui *GeneratorUI) handleHome(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	data := pageData{
		Nonce:       secure.Nonce(r.Context()),
		SessionID:   id,
		CallerKey:   ui.cfg.KeyMode == storybot.KeyCaller,
		Configured:  ui.cfg.PromptMode == storybot.PromptConfigured,
		StoryTypes:  storybot.StoryTypes,
		Characters:  storybot.Characters,
		Settings:    storybot.Settings,
		Suggestions: storybot.Suggestions,
		Snapshot:    ui.session(id).Snapshot(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		ui.logger.Error("Template execution error", zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func (ui *GeneratorUI) handleHealth(w http.ResponseWriter, r *http.Request) {
	ui.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type stateResponse struct {
	generator.Snapshot
	Notifications []generator.Notification `json:"notifications"`
}

func (ui *GeneratorUI) handleState(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	notes := ui.history(id).Notifications()
	if notes == nil {
		notes = []generator.Notification{}
	}
	ui.writeJSON(w, http.StatusOK, stateResponse{
		Snapshot:      ui.session(id).Snapshot(),
		Notifications: notes,
	})
}

func (ui *GeneratorUI) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ui.writeJSON(w, http.StatusOK, map[string]interface{}{
		string(storybot.KindStoryType): storybot.StoryTypes,
		string(storybot.KindCharacter): storybot.Characters,
		string(storybot.KindSetting):   storybot.Settings,
		"suggestions":                  storybot.Suggestions,
	})
}

type draftRequest struct {
	Prompt    *string `json:"prompt"`
	APIKey    *string `json:"apiKey"`
	StoryType *string `json:"storyType"`
	Character *string `json:"character"`
	Setting   *string `json:"setting"`
}

func (ui *GeneratorUI) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ui.writeError(w, http.StatusBadRequest, "Failed to parse draft")
		return
	}

	s := ui.session(sessionID(r))
	if req.Prompt != nil {
		s.SetDraftPrompt(*req.Prompt)
	}
	if req.APIKey != nil && ui.cfg.KeyMode == storybot.KeyCaller {
		s.SetAPIKey(*req.APIKey)
	}
	selections := []struct {
		kind storybot.Kind
		id   *string
	}{
		{storybot.KindStoryType, req.StoryType},
		{storybot.KindCharacter, req.Character},
		{storybot.KindSetting, req.Setting},
	}
	for _, sel := range selections {
		if sel.id == nil {
			continue
		}
		if err := s.Select(sel.kind, *sel.id); err != nil {
			ui.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	ui.writeJSON(w, http.StatusOK, s.Snapshot())
}

func (ui *GeneratorUI) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		ui.writeError(w, http.StatusBadRequest, "Invalid suggestion index")
		return
	}
	s := ui.session(sessionID(r))
	if err := s.UseSuggestion(index); err != nil {
		ui.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	ui.writeJSON(w, http.StatusOK, s.Snapshot())
}

// generationDone logs the settled result of a background generation.
func (ui *GeneratorUI) generationDone(id string) func(error) {
	return func(err error) {
		if err != nil && !errors.Is(err, generator.ErrDisposed) {
			ui.logger.Warn("Generation failed", zap.String("session", id), zap.Error(err))
		}
	}
}

// writeSubmitResult maps the immediate outcome of a submission to a status
// code. The generation itself outlives the request.
func (ui *GeneratorUI) writeSubmitResult(w http.ResponseWriter, id string, s *generator.Session, err error) {
	switch {
	case err == nil:
		ui.writeJSON(w, http.StatusAccepted, s.Snapshot())
	case errors.Is(err, generator.ErrInFlight):
		ui.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, generator.ErrDisposed):
		ui.writeError(w, http.StatusGone, err.Error())
	case storybot.IsValidation(err):
		n, _ := ui.history(id).LastNotification()
		ui.writeJSON(w, http.StatusUnprocessableEntity, n)
	default:
		ui.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (ui *GeneratorUI) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	s := ui.session(id)
	err := s.SubmitAsync(context.WithoutCancel(r.Context()), ui.generationDone(id))
	ui.writeSubmitResult(w, id, s, err)
}

// handleKey submits on a plain Enter; any other key is left to the browser.
func (ui *GeneratorUI) handleKey(w http.ResponseWriter, r *http.Request) {
	var ev generator.KeyEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		ui.writeError(w, http.StatusBadRequest, "Failed to parse key event")
		return
	}
	id := sessionID(r)
	s := ui.session(id)
	consumed, err := s.HandleKeyAsync(context.WithoutCancel(r.Context()), ev, ui.generationDone(id))
	if !consumed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ui.writeSubmitResult(w, id, s, err)
}
