package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narralabs/narramancer/internal/engine"
	"github.com/narralabs/narramancer/internal/services"
	"github.com/narralabs/narramancer/internal/storage"
	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/dice"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(llm *services.MockLLMAPI) *engine.Engine {
	return engine.New(storage.NewMockStorage(), llm, testLogger())
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeChatResponse(t *testing.T, w *httptest.ResponseRecorder) chat.ChatResponse {
	t.Helper()
	var resp chat.ChatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestChatHandler_Success(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.Responses = []string{"The gates creak open before you."}
	handler := NewChatHandler(newTestEngine(llm), testLogger())

	w := postJSON(t, handler, "/v1/chat", chat.ChatRequest{SessionID: "s1", Message: "I push the gates."})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeChatResponse(t, w)
	assert.Equal(t, "The gates creak open before you.", resp.Message)
	assert.Empty(t, resp.Error)
	assert.Nil(t, resp.PendingRoll)
}

func TestChatHandler_RollRequested(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.Responses = []string{"A guard blocks your path. [roll:1d20]"}
	handler := NewChatHandler(newTestEngine(llm), testLogger())

	w := postJSON(t, handler, "/v1/chat", chat.ChatRequest{SessionID: "s1", Message: "I sneak in."})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeChatResponse(t, w)
	assert.NotContains(t, resp.Message, "[roll:1d20]")
	assert.Contains(t, resp.Message, dice.WaitingPlaceholder)
	require.NotNil(t, resp.PendingRoll)
	assert.Equal(t, 1, resp.PendingRoll.Count)
	assert.Equal(t, 20, resp.PendingRoll.Sides)
}

func TestChatHandler_BadRequests(t *testing.T) {
	handler := NewChatHandler(newTestEngine(services.NewMockLLMAPI()), testLogger())

	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
	}{
		{name: "method not allowed", method: http.MethodGet, body: "", expectedStatus: http.StatusMethodNotAllowed},
		{name: "invalid json", method: http.MethodPost, body: "{not json", expectedStatus: http.StatusBadRequest},
		{name: "empty message", method: http.MethodPost, body: `{"session_id":"s1","message":""}`, expectedStatus: http.StatusBadRequest},
		{name: "missing session id", method: http.MethodPost, body: `{"message":"hello"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/chat", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeChatResponse(t, w)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestChatHandler_LLMFailureStaysInCharacter(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.GenerateResponseFunc = func(ctx context.Context, messages []chat.ChatMessage) (string, error) {
		return "", fmt.Errorf("%w: timeout", services.ErrLLMFailure)
	}
	handler := NewChatHandler(newTestEngine(llm), testLogger())

	w := postJSON(t, handler, "/v1/chat", chat.ChatRequest{SessionID: "s1", Message: "Hello."})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeChatResponse(t, w)
	assert.Equal(t, engine.Apology, resp.Message, "player still gets narrative text")
	assert.NotEmpty(t, resp.Error)
}
