package prompts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/state"
)

func TestBuildFreeTextTurn(t *testing.T) {
	s := state.NewSession("s1")
	s.AppendPlayer("My name is John, I am a Warrior.")
	s.AppendNarrator("Welcome, John. The shore is cold and grey.")

	messages, err := New().
		WithSession(s).
		WithPlayerMessage("I search the wreckage.").
		Build()

	assert.NoError(t, err)
	assert.Len(t, messages, 4)
	assert.Equal(t, chat.ChatRoleSystem, messages[0].Role)
	assert.Equal(t, BaseSystemPrompt, messages[0].Content)
	assert.Equal(t, chat.ChatRolePlayer, messages[1].Role)
	assert.Equal(t, chat.ChatRoleNarrator, messages[2].Role)
	assert.Equal(t, chat.ChatRolePlayer, messages[3].Role)
	assert.Equal(t, "I search the wreckage.", messages[3].Content)
}

func TestBuildRollResultTurn(t *testing.T) {
	s := state.NewSession("s1")
	s.AppendPlayer("I pick the lock.")

	resolved := "The lock resists. (Roll 1d20: 14) Hold your breath."
	echo := "🎲 You rolled 1d20: 14 = 14"

	messages, err := New().
		WithSession(s).
		WithRollResult(resolved, echo).
		Build()

	assert.NoError(t, err)
	assert.Len(t, messages, 5)
	assert.Equal(t, chat.ChatRoleNarrator, messages[2].Role)
	assert.Equal(t, resolved, messages[2].Content)
	assert.Equal(t, chat.ChatRolePlayer, messages[3].Role)
	assert.Equal(t, echo, messages[3].Content)
	assert.Equal(t, chat.ChatRoleSystem, messages[4].Role)
	assert.Equal(t, RollContextPrompt, messages[4].Content)
}

func TestBuildWindowsHistory(t *testing.T) {
	s := state.NewSession("s1")
	for i := 0; i < 30; i++ {
		s.AppendPlayer(fmt.Sprintf("turn %d", i))
	}

	messages, err := New().
		WithSession(s).
		WithPlayerMessage("latest").
		WithHistoryLimit(10).
		Build()

	assert.NoError(t, err)
	// system + 10 history + player turn
	assert.Len(t, messages, 12)
	assert.Equal(t, "turn 20", messages[1].Content)
}

func TestBuildValidation(t *testing.T) {
	_, err := New().WithPlayerMessage("hello").Build()
	assert.Error(t, err, "session is required")

	_, err = New().WithSession(state.NewSession("s1")).Build()
	assert.Error(t, err, "player message or roll result required")
}
