// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Gender is the grammatical gender of a noun.
type Gender string

// Supported genders.
const (
	Feminine  Gender = "f"
	Masculine Gender = "m"
	Neuter    Gender = "n"
)

// Genders lists the genders in display order.
var Genders = []Gender{Feminine, Masculine, Neuter}

// Label returns the display name of the gender.
func (g Gender) Label() string {
	switch g {
	case Feminine:
		return "Feminine"
	case Masculine:
		return "Masculine"
	case Neuter:
		return "Neuter"
	default:
		return "Total"
	}
}

// Article returns the nominative definite article for the gender.
func (g Gender) Article() string {
	switch g {
	case Feminine:
		return "die"
	case Masculine:
		return "der"
	case Neuter:
		return "das"
	default:
		return ""
	}
}

// Valid reports whether g is one of the three genders.
func (g Gender) Valid() bool {
	return g == Feminine || g == Masculine || g == Neuter
}

// ParseGender maps the usual spellings of a gender onto a Gender.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "die", "fem", "feminine", "feminin":
		return Feminine, nil
	case "m", "der", "masc", "masculine", "maskulin":
		return Masculine, nil
	case "n", "das", "neut", "neuter", "neutrum":
		return Neuter, nil
	default:
		return "", fmt.Errorf("unknown gender %q", s)
	}
}

// Noun is one entry of the lexical table as stored.
type Noun struct {
	Word   string
	Gender Gender
	Usage  int
}

// WordRecord pairs a noun with one of its endings.
type WordRecord struct {
	Word   string
	Gender Gender
	Usage  int
	Ending string
}

// EndingStats holds the gender distribution for one ending.
type EndingStats struct {
	Ending   string
	Counts   map[Gender]int
	Total    int
	Accuracy float64
}

// AccuracyPct returns the accuracy as a rounded percentage.
func (s EndingStats) AccuracyPct() int {
	return int(math.Round(s.Accuracy * 100))
}

// Majority returns the most frequent gender. Ties resolve in display order.
func (s EndingStats) Majority() Gender {
	if s.Total == 0 {
		return ""
	}
	best := Gender("")
	bestCount := 0
	for _, g := range Genders {
		if c := s.Counts[g]; c > bestCount {
			best = g
			bestCount = c
		}
	}
	return best
}

// ExceptionMap maps an ending to the words excluded from its rule.
// Order keeps the endings in insertion order.
type ExceptionMap struct {
	Order []string
	Words map[string][]string
}

// Endings returns the endings in insertion order.
func (m ExceptionMap) Endings() []string {
	return append([]string(nil), m.Order...)
}

// Get returns the exceptions of an ending and whether the ending is known.
func (m ExceptionMap) Get(ending string) ([]string, bool) {
	words, ok := m.Words[ending]
	if !ok {
		return nil, false
	}
	return append([]string(nil), words...), true
}

// Has reports whether the ending is a key of the map.
func (m ExceptionMap) Has(ending string) bool {
	_, ok := m.Words[ending]
	return ok
}

// AllExceptions returns every exception once, in map order.
func (m ExceptionMap) AllExceptions() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, ending := range m.Order {
		for _, w := range m.Words[ending] {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// KeyEnding is a high-value ending chosen for the summary statistics.
type KeyEnding struct {
	Ending   string
	Gender   Gender
	Total    int
	Accuracy float64
	Coverage float64
}

// GenderSummary aggregates the key endings of one gender.
type GenderSummary struct {
	Gender        Gender
	NumKeyEndings int
	TotalCoverage int
	CoveragePct   float64
	AccuracyPct   float64
}

// DashboardConfig defines the resolved dashboard settings.
type DashboardConfig struct {
	DBPath         string
	Top            int
	KeyCount       int
	MinKeyAccuracy float64
	Exceptions     ExceptionMap
}
