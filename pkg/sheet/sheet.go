// Package sheet tracks the character sheet shown next to the story. All
// values are scraped from free-form narrator prose, so everything here
// is best-effort: a failed match leaves the sheet unchanged and is
// never an error.
package sheet

import (
	"regexp"
	"strconv"

	"github.com/jwebster45206/d20"
)

var (
	// e.g. "HP: 72 / 80"
	hpPattern = regexp.MustCompile(`HP:\s*(\d+)\s*/\s*(\d+)`)
	// e.g. "Gold Coins: 75"
	goldPattern = regexp.MustCompile(`Gold Coins:\s*(\d+)`)
)

// Sheet is a session's derived character stats. Name and Class come
// from character creation; HP, MaxHP and Gold are overwritten whenever
// the narrator mentions new values.
type Sheet struct {
	Name  string `json:"name,omitempty"`
	Class string `json:"class,omitempty"`
	HP    int    `json:"hp,omitempty"`
	MaxHP int    `json:"max_hp,omitempty"`
	Gold  int    `json:"gold,omitempty"`
}

// Observe scans narrator text for stat lines and overwrites any values
// found. Returns true if the sheet changed.
func (s *Sheet) Observe(text string) bool {
	changed := false

	if m := hpPattern.FindStringSubmatch(text); m != nil {
		hp, err1 := strconv.Atoi(m[1])
		maxHP, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && validHP(hp, maxHP) {
			if hp != s.HP || maxHP != s.MaxHP {
				s.HP = hp
				s.MaxHP = maxHP
				changed = true
			}
		}
	}

	if m := goldPattern.FindStringSubmatch(text); m != nil {
		if gold, err := strconv.Atoi(m[1]); err == nil && gold != s.Gold {
			s.Gold = gold
			changed = true
		}
	}

	return changed
}

// validHP checks a scraped HP pair against the d20 actor rules, so
// prose like "HP: 120 / 80" doesn't corrupt the sheet.
func validHP(hp, maxHP int) bool {
	if maxHP < 1 || hp < 0 {
		return false
	}
	actor, err := d20.NewActor("sheet").WithHP(maxHP).Build()
	if err != nil {
		return false
	}
	if hp == maxHP {
		return true
	}
	return actor.SetHP(hp) == nil
}
