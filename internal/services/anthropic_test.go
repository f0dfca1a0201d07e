package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/narralabs/narramancer/pkg/chat"
)

func TestNewAnthropicService(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-api-key", "claude-sonnet-4-20250514", log)

	assert.Equal(t, "test-api-key", service.apiKey)
	assert.Equal(t, "claude-sonnet-4-20250514", service.modelName)
	assert.NotNil(t, service.httpClient)
}

func TestAnthropicSplitChatMessages(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-sonnet-4-20250514", log)

	tests := []struct {
		name              string
		messages          []chat.ChatMessage
		expectedSystem    string
		conversationCount int
	}{
		{
			name: "single system message",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are Narramancer."},
				{Role: chat.ChatRolePlayer, Content: "Hello"},
				{Role: chat.ChatRoleNarrator, Content: "Well met!"},
			},
			expectedSystem:    "You are Narramancer.",
			conversationCount: 2,
		},
		{
			name: "multiple system messages joined",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are Narramancer."},
				{Role: chat.ChatRolePlayer, Content: "I roll."},
				{Role: chat.ChatRoleSystem, Content: "The dice have spoken."},
			},
			expectedSystem:    "You are Narramancer.\n\nThe dice have spoken.",
			conversationCount: 1,
		},
		{
			name: "no system messages",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRolePlayer, Content: "Hello"},
			},
			expectedSystem:    "",
			conversationCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, conversation := service.splitChatMessages(tt.messages)
			assert.Equal(t, tt.expectedSystem, system)
			assert.Len(t, conversation, tt.conversationCount)
		})
	}
}
