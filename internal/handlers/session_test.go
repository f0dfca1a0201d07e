package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narralabs/narramancer/internal/services"
	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/state"
)

func TestSessionHandler_NewGame(t *testing.T) {
	handler := NewSessionHandler(newTestEngine(services.NewMockLLMAPI()), testLogger())

	w := postJSON(t, handler, "/v1/session", chat.RollTrigger{SessionID: "s1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var s state.Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	assert.Equal(t, "s1", s.ID)
	assert.Empty(t, s.ChatHistory)
	assert.Nil(t, s.PendingRoll)
}

func TestSessionHandler_NewGameClearsStory(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.Responses = []string{"A storm gathers over the keep."}
	eng := newTestEngine(llm)

	chatHandler := NewChatHandler(eng, testLogger())
	w := postJSON(t, chatHandler, "/v1/chat", chat.ChatRequest{SessionID: "s1", Message: "I look around."})
	require.Equal(t, http.StatusOK, w.Code)

	sessionHandler := NewSessionHandler(eng, testLogger())
	w = postJSON(t, sessionHandler, "/v1/session", chat.RollTrigger{SessionID: "s1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/session/s1", nil)
	sessionHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var s state.Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	assert.Empty(t, s.ChatHistory)
}

func TestSessionHandler_GetSession(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.Responses = []string{"The tavern falls silent as you enter."}
	eng := newTestEngine(llm)

	chatHandler := NewChatHandler(eng, testLogger())
	w := postJSON(t, chatHandler, "/v1/chat", chat.ChatRequest{SessionID: "s1", Message: "I enter the tavern."})
	require.Equal(t, http.StatusOK, w.Code)

	handler := NewSessionHandler(eng, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/v1/session/s1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var s state.Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	assert.Equal(t, "s1", s.ID)
	assert.Len(t, s.ChatHistory, 2)
}

func TestSessionHandler_GetSessionNotFound(t *testing.T) {
	handler := NewSessionHandler(newTestEngine(services.NewMockLLMAPI()), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/session/ghost", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_GetSessionMissingID(t *testing.T) {
	handler := NewSessionHandler(newTestEngine(services.NewMockLLMAPI()), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/session/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
