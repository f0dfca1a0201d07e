package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/narralabs/narramancer/internal/engine"
	"github.com/narralabs/narramancer/pkg/chat"
)

// RollHandler resolves a session's pending dice roll.
type RollHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewRollHandler(engine *engine.Engine, logger *slog.Logger) *RollHandler {
	return &RollHandler{
		engine: engine,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/roll.
func (h *RollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var trigger chat.RollTrigger
	if err := json.NewDecoder(r.Body).Decode(&trigger); err != nil {
		h.logger.Warn("Invalid roll trigger body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' field.")
		return
	}
	if err := trigger.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Roll(r.Context(), trigger.SessionID)
	if err != nil {
		if errors.Is(err, engine.ErrNoPendingRoll) {
			writeError(w, h.logger, http.StatusConflict, "No roll is pending for this session.")
			return
		}
		writeTurnFailure(w, h.logger, trigger.SessionID, err)
		return
	}

	writeResult(w, h.logger, trigger.SessionID, result)
}
