package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/narralabs/narramancer/internal/engine"
	"github.com/narralabs/narramancer/pkg/chat"
)

// SessionHandler manages session lifecycle.
// Routes:
//
//	POST /v1/session      - start a new game (clears story, keeps id)
//	GET  /v1/session/{id} - read session state
type SessionHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSessionHandler(engine *engine.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: engine,
		logger: logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		h.newGame(w, r)
	case http.MethodGet:
		h.getSession(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *SessionHandler) newGame(w http.ResponseWriter, r *http.Request) {
	var trigger chat.RollTrigger // same shape: just a session id
	if err := json.NewDecoder(r.Body).Decode(&trigger); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' field.")
		return
	}
	if err := trigger.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.engine.NewGame(r.Context(), trigger.SessionID)
	if err != nil {
		writeTurnFailure(w, h.logger, trigger.SessionID, err)
		return
	}

	h.logger.Info("New game started", "session_id", s.ID)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(s); err != nil {
		h.logger.Error("Error encoding session response", "error", err)
	}
}

func (h *SessionHandler) getSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/session/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Session id is required.")
		return
	}

	s, err := h.engine.Session(r.Context(), id)
	if err != nil {
		writeTurnFailure(w, h.logger, id, err)
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found.")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s); err != nil {
		h.logger.Error("Error encoding session response", "error", err)
	}
}
