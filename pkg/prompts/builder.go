package prompts

import (
	"fmt"

	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/state"
)

// Builder constructs the message array for one LLM call using a fluent
// interface. It keeps prompt assembly out of the engine's state machine.
type Builder struct {
	session       *state.Session
	playerMessage string
	resolvedText  string
	rollEcho      string
	historyLimit  int
	messages      []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: state.PromptHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithSession sets the session whose history is replayed.
func (b *Builder) WithSession(s *state.Session) *Builder {
	b.session = s
	return b
}

// WithPlayerMessage sets a free-text player turn.
func (b *Builder) WithPlayerMessage(message string) *Builder {
	b.playerMessage = message
	return b
}

// WithRollResult sets a resolved roll: the narrator's origin text with
// the marker span already replaced by the result parenthetical, and the
// player-facing echo line.
func (b *Builder) WithRollResult(resolved, echo string) *Builder {
	b.resolvedText = resolved
	b.rollEcho = echo
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if b.playerMessage == "" && b.resolvedText == "" {
		return nil, fmt.Errorf("a player message or roll result is required")
	}

	b.messages = make([]chat.ChatMessage, 0, len(b.session.ChatHistory)+4)

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: BaseSystemPrompt,
	})

	b.addHistory()

	if b.resolvedText != "" {
		// The narrator turn that asked for the roll, with the marker
		// span replaced by the result, followed by the player's echo.
		b.messages = append(b.messages,
			chat.ChatMessage{Role: chat.ChatRoleNarrator, Content: b.resolvedText},
			chat.ChatMessage{Role: chat.ChatRolePlayer, Content: b.rollEcho},
			chat.ChatMessage{Role: chat.ChatRoleSystem, Content: RollContextPrompt},
		)
	} else {
		b.messages = append(b.messages, chat.ChatMessage{
			Role:    chat.ChatRolePlayer,
			Content: b.playerMessage,
		})
	}

	return b.messages, nil
}

// addHistory adds windowed chat history to the message array.
func (b *Builder) addHistory() {
	history := b.session.ChatHistory
	if len(history) == 0 {
		return
	}
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	b.messages = append(b.messages, history...)
}
