package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/narralabs/narramancer/internal/metrics"
	"github.com/narralabs/narramancer/pkg/chat"
)

const (
	mistralBaseURL = "https://api.mistral.ai/v1"

	// Slightly raised temperature for creative storytelling.
	DefaultMistralTemperature = 0.7
	DefaultMistralMaxTokens   = 2048
)

// MistralService implements LLMService against the Mistral
// chat-completions API.
type MistralService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

type mistralChatRequest struct {
	Model       string             `json:"model"`
	Temperature *float64           `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Messages    []chat.ChatMessage `json:"messages"`
	Stream      bool               `json:"stream"`
}

type mistralChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int              `json:"index"`
		Message chat.ChatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func NewMistralService(apiKey string, modelName string, logger *slog.Logger) *MistralService {
	return &MistralService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (m *MistralService) GenerateResponse(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	start := time.Now()
	text, err := m.chatCompletion(ctx, messages)
	metrics.LLMRequestDuration.WithLabelValues("mistral").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMErrors.WithLabelValues("mistral").Inc()
		return "", fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}
	return text, nil
}

func (m *MistralService) chatCompletion(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	temperature := DefaultMistralTemperature
	mistralReq := mistralChatRequest{
		Model:       m.modelName,
		Temperature: &temperature,
		MaxTokens:   DefaultMistralMaxTokens,
		Messages:    messages,
	}

	reqBody, err := json.Marshal(mistralReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", mistralBaseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var mistralResp mistralChatResponse
	if err := json.Unmarshal(body, &mistralResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(mistralResp.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	m.logger.Debug("Mistral chat completion",
		"model", mistralResp.Model,
		"prompt_tokens", mistralResp.Usage.PromptTokens,
		"completion_tokens", mistralResp.Usage.CompletionTokens)

	return mistralResp.Choices[0].Message.Content, nil
}
