package ui

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func isValidSession(sessionID string) bool {
	if sessionID == "" {
		return false
	}

	_, err := uuid.Parse(sessionID)
	return err == nil
}

func (ui *GeneratorUI) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ui.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (ui *GeneratorUI) writeError(w http.ResponseWriter, status int, message string) {
	ui.writeJSON(w, status, map[string]string{"error": message})
}
