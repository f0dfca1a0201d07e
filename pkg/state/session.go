package state

import (
	"time"

	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/dice"
	"github.com/narralabs/narramancer/pkg/sheet"
)

// Session is the durable state of one ongoing player/story
// conversation. The ID is supplied by the delivery surface (a Telegram
// user id, a web widget session id) and survives "start new game".
type Session struct {
	ID          string             `json:"id"`
	ChatHistory []chat.ChatMessage `json:"chat_history,omitempty"`
	PendingRoll *dice.Request      `json:"pending_roll,omitempty"`
	Sheet       sheet.Sheet        `json:"sheet,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		ChatHistory: make([]chat.ChatMessage, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Reset starts a new game: history, pending roll and sheet are cleared,
// the session identity persists.
func (s *Session) Reset() {
	s.ChatHistory = make([]chat.ChatMessage, 0)
	s.PendingRoll = nil
	s.Sheet = sheet.Sheet{}
}

// Awaiting reports whether the session is blocked on a dice roll.
func (s *Session) Awaiting() bool {
	return s.PendingRoll != nil
}

func (s *Session) AppendPlayer(text string) {
	s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{Role: chat.ChatRolePlayer, Content: text})
}

func (s *Session) AppendNarrator(text string) {
	s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{Role: chat.ChatRoleNarrator, Content: text})
}

// PromptHistoryLimit caps how many prior turns are replayed to the LLM.
const PromptHistoryLimit = 20

// HistoryWindow returns the most recent turns for prompt construction.
func (s *Session) HistoryWindow() []chat.ChatMessage {
	if len(s.ChatHistory) <= PromptHistoryLimit {
		return s.ChatHistory
	}
	return s.ChatHistory[len(s.ChatHistory)-PromptHistoryLimit:]
}
