package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRolePlayer   = "user"      // the human player
	ChatRoleNarrator = "assistant" // the game master
	ChatRoleSystem   = "system"    // prompt and control messages
)

// ChatMessage is a single turn in a session's conversation. The role
// values follow the chat-completions convention used by the LLM APIs.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a free-text player turn submitted to the narramancer api.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// RollTrigger asks the api to resolve the pending roll for a session.
// The player does not choose the dice; they were fixed when the
// narrator requested the roll.
type RollTrigger struct {
	SessionID string `json:"session_id"`
}

// PendingRoll describes the roll a session is waiting on.
type PendingRoll struct {
	Count int `json:"count"`
	Sides int `json:"sides"`
}

// SheetSnapshot is the best-effort character sheet shown next to the story.
type SheetSnapshot struct {
	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	Gold  int `json:"gold"`
}

// ChatResponse is returned for both free-text turns and roll triggers.
// Message is always populated, even when the turn failed internally.
type ChatResponse struct {
	SessionID   string         `json:"session_id,omitempty"`
	Message     string         `json:"message,omitempty"`
	RollEcho    string         `json:"roll_echo,omitempty"` // e.g. "🎲 You rolled 2d6: 3 + 5 = 8"
	PendingRoll *PendingRoll   `json:"pending_roll,omitempty"`
	Sheet       *SheetSnapshot `json:"sheet,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func (cr *ChatRequest) Validate() error {
	if strings.TrimSpace(cr.SessionID) == "" {
		return fmt.Errorf("session_id cannot be empty")
	}
	if strings.TrimSpace(cr.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

func (rt *RollTrigger) Validate() error {
	if strings.TrimSpace(rt.SessionID) == "" {
		return fmt.Errorf("session_id cannot be empty")
	}
	return nil
}
