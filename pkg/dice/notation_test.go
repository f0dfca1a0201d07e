package dice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		notation  string
		count     int
		sides     int
		expectErr error
	}{
		{name: "single d20", notation: "1d20", count: 1, sides: 20},
		{name: "two d6", notation: "2d6", count: 2, sides: 6},
		{name: "uppercase separator", notation: "3D8", count: 3, sides: 8},
		{name: "degenerate one-sided die", notation: "1d1", count: 1, sides: 1},
		{name: "large spec", notation: "10d100", count: 10, sides: 100},
		{name: "missing count", notation: "d20", expectErr: ErrMalformedNotation},
		{name: "missing sides", notation: "2d", expectErr: ErrMalformedNotation},
		{name: "empty", notation: "", expectErr: ErrMalformedNotation},
		{name: "wrong separator", notation: "2x6", expectErr: ErrMalformedNotation},
		{name: "negative count", notation: "-1d6", expectErr: ErrMalformedNotation},
		{name: "trailing garbage", notation: "2d6!", expectErr: ErrMalformedNotation},
		{name: "zero count", notation: "0d6", expectErr: ErrInvalidDice},
		{name: "zero sides", notation: "2d0", expectErr: ErrInvalidDice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, sides, err := Parse(tt.notation)
			if tt.expectErr != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectErr), "expected %v, got %v", tt.expectErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.count, count)
			assert.Equal(t, tt.sides, sides)
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	specs := []struct{ count, sides int }{
		{1, 1}, {1, 2}, {1, 20}, {2, 6}, {4, 4}, {8, 12}, {100, 100},
	}

	for _, spec := range specs {
		notation := Format(spec.count, spec.sides)
		count, sides, err := Parse(notation)
		assert.NoError(t, err, "round-trip of %s", notation)
		assert.Equal(t, spec.count, count)
		assert.Equal(t, spec.sides, sides)
	}
}
