package dice

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker syntax embedded in narrator output. The prompt instructs the
// model to emit exactly this form; any other bracket or brace variant
// is treated as plain narrative text.
var markerPattern = regexp.MustCompile(`\[roll:([0-9]+[dD][0-9]+)\]`)

// WaitingPlaceholder replaces the marker span in text shown to the
// player while a roll is outstanding.
const WaitingPlaceholder = "🎲 Awaiting your dice roll..."

// Request is a roll the narrator asked for. OriginText is the full
// narrator message the marker appeared in; it, not the placeholder, is
// what gets re-submitted to the LLM once the roll resolves.
type Request struct {
	Count      int    `json:"count"`
	Sides      int    `json:"sides"`
	Marker     string `json:"marker"`
	OriginText string `json:"origin_text"`
}

// Scan looks for the first roll-request marker in narrator text. It
// returns nil and false when no well-formed marker is present. Markers
// with a zero count or zero sides are ignored and left in the text,
// the same as any other unparseable fragment.
func Scan(text string) (*Request, bool) {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	count, sides, err := Parse(m[1])
	if err != nil {
		return nil, false
	}

	return &Request{
		Count:      count,
		Sides:      sides,
		Marker:     m[0],
		OriginText: text,
	}, true
}

// Placeholder returns the origin text with the marker span replaced by
// WaitingPlaceholder. Only the matched occurrence is substituted;
// later duplicates stay as narrative text.
func (r *Request) Placeholder() string {
	return strings.Replace(r.OriginText, r.Marker, WaitingPlaceholder, 1)
}

// Resolve returns the origin text with the marker span replaced by a
// human-readable result parenthetical, e.g. "(Roll 1d20: 14)". The rest
// of the text is unchanged byte for byte.
func (r *Request) Resolve(o Outcome) string {
	result := fmt.Sprintf("(Roll %s: %d)", Format(r.Count, r.Sides), o.Total)
	return strings.Replace(r.OriginText, r.Marker, result, 1)
}

// Notation returns the request's dice spec in canonical form.
func (r *Request) Notation() string {
	return Format(r.Count, r.Sides)
}
