package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/narralabs/narramancer/internal/engine"
	"github.com/narralabs/narramancer/internal/services"
	"github.com/narralabs/narramancer/internal/storage"
	"github.com/narralabs/narramancer/pkg/chat"
)

// ChatHandler handles free-text player turns.
type ChatHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewChatHandler(engine *engine.Engine, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		engine: engine,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid chat request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' and 'message' fields.")
		return
	}
	if err := request.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Interact(r.Context(), request.SessionID, request.Message)
	if err != nil {
		writeTurnFailure(w, h.logger, request.SessionID, err)
		return
	}

	writeResult(w, h.logger, request.SessionID, result)
}

// writeResult encodes an engine result as a ChatResponse.
func writeResult(w http.ResponseWriter, logger *slog.Logger, sessionID string, result *engine.Result) {
	w.WriteHeader(http.StatusOK)
	response := chat.ChatResponse{
		SessionID:   sessionID,
		Message:     result.Text,
		RollEcho:    result.RollEcho,
		PendingRoll: result.PendingRoll,
		Sheet:       result.Sheet,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Error encoding chat response", "error", err)
	}
}

// writeTurnFailure maps engine errors to HTTP statuses while keeping
// the player-facing message in character. No turn goes unanswered.
func writeTurnFailure(w http.ResponseWriter, logger *slog.Logger, sessionID string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrLLMFailure):
		status = http.StatusBadGateway
	case errors.Is(err, storage.ErrStoreFailure):
		status = http.StatusServiceUnavailable
	}

	logger.Error("Turn failed", "session_id", sessionID, "error", err)
	w.WriteHeader(status)
	response := chat.ChatResponse{
		SessionID: sessionID,
		Message:   engine.Apology,
		Error:     err.Error(),
	}
	if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
		logger.Error("Error encoding failure response", "error", encErr)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(chat.ChatResponse{Error: message}); err != nil {
		logger.Error("Error encoding error response", "error", err)
	}
}
