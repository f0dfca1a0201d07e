// Package textfilter softens narrator output for family-friendly play.
// The LLM is already prompted to stay PG, so this is a backstop, not a
// moderation system.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps words the narrator should not use to softer
// in-genre alternatives.
var replacements = map[string]string{
	"fuck":     "fudge",
	"shit":     "shoot",
	"damn":     "dang",
	"goddamn":  "gosh-dang",
	"hell":     "heck",
	"ass":      "backside",
	"asshole":  "scoundrel",
	"bitch":    "wretch",
	"bastard":  "scoundrel",
	"crap":     "rubbish",
	"piss":     "ticked",
	"bullshit": "nonsense",
	"whore":    "harlot",
	"dick":     "lout",
	"prick":    "lout",
}

// Softener replaces harsh language in narrator text while preserving
// the original casing.
type Softener struct {
	patterns map[string]*regexp.Regexp
}

func NewSoftener() *Softener {
	s := &Softener{patterns: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		s.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return s
}

// Soften returns the text with flagged words replaced. Words inside
// larger words are left alone.
func (s *Softener) Soften(text string) string {
	result := text
	for word, pattern := range s.patterns {
		replacement := replacements[word]
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			return matchCase(match, replacement)
		})
	}
	return result
}

// matchCase applies the case shape of the original word to the
// replacement: all-caps, title case, or lowercase.
func matchCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	titler := cases.Title(language.English)
	if titler.String(strings.ToLower(original)) == original {
		return titler.String(replacement)
	}
	if unicode.IsUpper([]rune(original)[0]) {
		return titler.String(replacement)
	}
	return strings.ToLower(replacement)
}
