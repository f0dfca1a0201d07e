package services

import (
	"context"
	"errors"

	"github.com/narralabs/narramancer/pkg/chat"
)

// ErrLLMFailure marks any failure at the language-service boundary
// (network, timeout, quota, malformed response). Callers can test for
// it with errors.Is to distinguish retryable narrative failures from
// programming errors.
var ErrLLMFailure = errors.New("language service failure")

// LLMService is the narrative generator. It receives an ordered message
// history (system prompt first) and returns the next narrator message.
type LLMService interface {
	GenerateResponse(ctx context.Context, messages []chat.ChatMessage) (string, error)
}
