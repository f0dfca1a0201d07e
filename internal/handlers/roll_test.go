package handlers

import (
	"bytes"
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

func TestRollHandler_ResolvesPendingRoll(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.Responses = []string{
		"You swing at the shadow. [roll:1d20]",
		"The blade connects and the shadow shrieks.",
	}
	eng := engine.New(storage.NewMockStorage(), llm, testLogger(),
		engine.WithRoller(func(count, sides int) (dice.Outcome, error) {
			return dice.Outcome{Count: count, Sides: sides, Results: []int{14}, Total: 14}, nil
		}))

	chatHandler := NewChatHandler(eng, testLogger())
	w := postJSON(t, chatHandler, "/v1/chat", chat.ChatRequest{SessionID: "s1", Message: "I attack!"})
	require.Equal(t, http.StatusOK, w.Code)

	rollHandler := NewRollHandler(eng, testLogger())
	w = postJSON(t, rollHandler, "/v1/roll", chat.RollTrigger{SessionID: "s1"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeChatResponse(t, w)
	assert.Equal(t, "The blade connects and the shadow shrieks.", resp.Message)
	assert.Contains(t, resp.RollEcho, "1d20")
	assert.Contains(t, resp.RollEcho, "14")
	assert.Nil(t, resp.PendingRoll)
}

func TestRollHandler_NoPendingRoll(t *testing.T) {
	handler := NewRollHandler(newTestEngine(services.NewMockLLMAPI()), testLogger())

	w := postJSON(t, handler, "/v1/roll", chat.RollTrigger{SessionID: "s1"})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeChatResponse(t, w)
	assert.NotEmpty(t, resp.Error)
}

func TestRollHandler_BadRequests(t *testing.T) {
	handler := NewRollHandler(newTestEngine(services.NewMockLLMAPI()), testLogger())

	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
	}{
		{name: "method not allowed", method: http.MethodGet, body: "", expectedStatus: http.StatusMethodNotAllowed},
		{name: "invalid json", method: http.MethodPost, body: "nope", expectedStatus: http.StatusBadRequest},
		{name: "missing session id", method: http.MethodPost, body: `{}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/roll", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
