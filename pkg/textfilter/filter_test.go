package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoften(t *testing.T) {
	s := NewSoftener()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase word",
			input:    "The orc yells: damn you!",
			expected: "The orc yells: dang you!",
		},
		{
			name:     "title case preserved",
			input:    "Damn the consequences.",
			expected: "Dang the consequences.",
		},
		{
			name:     "all caps preserved",
			input:    "DAMN!",
			expected: "DANG!",
		},
		{
			name:     "word inside larger word untouched",
			input:    "The assassin crosses the hall, passing the classic armory.",
			expected: "The assassin crosses the hall, passing the classic armory.",
		},
		{
			name:     "clean text unchanged",
			input:    "The tavern falls silent as you enter.",
			expected: "The tavern falls silent as you enter.",
		},
		{
			name:     "roll markers are not text to soften",
			input:    "Make a saving throw! [roll:1d20]",
			expected: "Make a saving throw! [roll:1d20]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Soften(tt.input))
		})
	}
}
