package dice

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Outcome captures the results of rolling count dice with the given
// number of sides. Results holds each die in roll order; Total is their
// sum.
type Outcome struct {
	Count   int   `json:"count"`
	Sides   int   `json:"sides"`
	Results []int `json:"results"`
	Total   int   `json:"total"`
}

// Roller produces an Outcome for a dice spec. The engine takes a Roller
// so tests can script exact results.
type Roller func(count, sides int) (Outcome, error)

// Roll draws count independent uniform values in [1, sides] from the
// process-wide random source.
func Roll(count, sides int) (Outcome, error) {
	if count < 1 || sides < 1 {
		return Outcome{}, fmt.Errorf("%w: %s", ErrInvalidDice, Format(count, sides))
	}

	o := Outcome{
		Count:   count,
		Sides:   sides,
		Results: make([]int, count),
	}
	for i := range o.Results {
		o.Results[i] = rand.IntN(sides) + 1
		o.Total += o.Results[i]
	}
	return o, nil
}

// Echo renders the outcome for the player, e.g.
// "🎲 You rolled 2d6: 3 + 5 = 8".
func (o Outcome) Echo() string {
	parts := make([]string, len(o.Results))
	for i, r := range o.Results {
		parts[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("🎲 You rolled %s: %s = %d", Format(o.Count, o.Sides), strings.Join(parts, " + "), o.Total)
}
