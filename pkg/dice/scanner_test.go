package dice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanFindsMarker(t *testing.T) {
	text := "The goblin lunges at you. [roll:1d20] Steel yourself!"

	req, ok := Scan(text)
	assert.True(t, ok)
	assert.Equal(t, 1, req.Count)
	assert.Equal(t, 20, req.Sides)
	assert.Equal(t, "[roll:1d20]", req.Marker)
	assert.Equal(t, text, req.OriginText)

	placeholder := req.Placeholder()
	assert.NotContains(t, placeholder, "[roll:1d20]")
	assert.Contains(t, placeholder, WaitingPlaceholder)
	assert.True(t, strings.HasPrefix(placeholder, "The goblin lunges at you. "))
}

func TestScanNoMarker(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "plain narrative", text: "You walk into the tavern."},
		{name: "empty text", text: ""},
		{name: "missing count", text: "Try your luck! [roll:d20]"},
		{name: "brace variant ignored", text: "Try your luck! {{roll:1d20}}"},
		{name: "single brace variant ignored", text: "Try your luck! {roll:1d20}"},
		{name: "zero count", text: "Impossible dice. [roll:0d6]"},
		{name: "zero sides", text: "Impossible dice. [roll:2d0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := Scan(tt.text)
			assert.False(t, ok)
			assert.Nil(t, req)
		})
	}
}

func TestScanFirstMarkerOnly(t *testing.T) {
	text := "Dodge! [roll:1d20] Then strike: [roll:2d6]"

	req, ok := Scan(text)
	assert.True(t, ok)
	assert.Equal(t, "[roll:1d20]", req.Marker)

	// The second marker stays in the text untouched.
	placeholder := req.Placeholder()
	assert.NotContains(t, placeholder, "[roll:1d20]")
	assert.Contains(t, placeholder, "[roll:2d6]")
}

func TestResolveContextFidelity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		outcome  Outcome
		expected string
	}{
		{
			name:     "single d20",
			text:     "The lock resists. [roll:1d20] Hold your breath.",
			outcome:  Outcome{Count: 1, Sides: 20, Results: []int{14}, Total: 14},
			expected: "The lock resists. (Roll 1d20: 14) Hold your breath.",
		},
		{
			name:     "two d6",
			text:     "[roll:2d6] The dice clatter across the table.",
			outcome:  Outcome{Count: 2, Sides: 6, Results: []int{3, 5}, Total: 8},
			expected: "(Roll 2d6: 8) The dice clatter across the table.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := Scan(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, req.Resolve(tt.outcome))
		})
	}
}
