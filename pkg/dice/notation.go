// Package dice implements the dice protocol for narramancer: the compact
// "NdS" notation, uniform roll simulation, and the scanner that detects
// roll-request markers embedded in narrator text.
package dice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformedNotation indicates a dice expression that is not of the
// form "NdS" (e.g. "d20", "2x6", "2d").
var ErrMalformedNotation = errors.New("malformed dice notation, expected NdS")

// ErrInvalidDice indicates a dice count or side count below 1.
var ErrInvalidDice = errors.New("dice count and sides must be positive")

var notationPattern = regexp.MustCompile(`^([0-9]+)[dD]([0-9]+)$`)

// Parse decodes a dice expression like "1d20" or "2d6" into its count
// and sides. The "d" separator is case-insensitive.
func Parse(notation string) (count, sides int, err error) {
	m := notationPattern.FindStringSubmatch(notation)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}

	// The pattern only admits digits, but the values can still overflow
	// or be zero.
	count, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}
	sides, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}

	if count < 1 || sides < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDice, notation)
	}
	return count, sides, nil
}

// Format encodes count and sides as canonical "NdS" notation. It is the
// inverse of Parse for all valid inputs.
func Format(count, sides int) string {
	return fmt.Sprintf("%dd%d", count, sides)
}
