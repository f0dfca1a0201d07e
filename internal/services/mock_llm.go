package services

import (
	"context"
	"sync"

	"github.com/narralabs/narramancer/pkg/chat"
)

// MockLLMAPI is a scriptable LLMService for testing.
type MockLLMAPI struct {
	GenerateResponseFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Responses are returned in order when GenerateResponseFunc is
	// unset; after they run out the last one repeats.
	Responses []string

	// Track calls for testing
	GenerateResponseCalls [][]chat.ChatMessage

	mu sync.Mutex
}

func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		GenerateResponseCalls: make([][]chat.ChatMessage, 0),
	}
}

func (m *MockLLMAPI) GenerateResponse(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]chat.ChatMessage, len(messages))
	copy(recorded, messages)
	m.GenerateResponseCalls = append(m.GenerateResponseCalls, recorded)

	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, messages)
	}

	if len(m.Responses) == 0 {
		return "The story continues.", nil
	}
	idx := len(m.GenerateResponseCalls) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// LastCall returns the most recent message array passed to the mock,
// or nil if it was never called.
func (m *MockLLMAPI) LastCall() []chat.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.GenerateResponseCalls) == 0 {
		return nil
	}
	return m.GenerateResponseCalls[len(m.GenerateResponseCalls)-1]
}
