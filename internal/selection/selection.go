// Package selection holds the dashboard's click-driven filter state.
//
// State is a plain value: every interaction passes the current State and an
// Event to Machine.Apply and receives the next State. Nothing is kept between
// calls, so one Machine can serve any number of independent sessions.
package selection

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/derdie/internal/lexicon"
	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/stats"
)

// Phase is the coarse state of the filter.
type Phase int

const (
	Unselected Phase = iota
	EndingSelected
	ExceptionSelected
)

func (p Phase) String() string {
	switch p {
	case EndingSelected:
		return "ending"
	case ExceptionSelected:
		return "exception"
	default:
		return "unselected"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ending":
		*p = EndingSelected
	case "exception":
		*p = ExceptionSelected
	case "", "unselected":
		*p = Unselected
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Aspect names the metric picked on the summary page.
type Aspect string

const (
	AspectAccuracy Aspect = "accuracy"
	AspectCoverage Aspect = "coverage"
)

// Counts is the gender split of the current table filter.
type Counts struct {
	Feminine  int `json:"f"`
	Masculine int `json:"m"`
	Neuter    int `json:"n"`
	Total     int `json:"total"`
}

// Get returns the count of one gender.
func (c Counts) Get(g model.Gender) int {
	switch g {
	case model.Feminine:
		return c.Feminine
	case model.Masculine:
		return c.Masculine
	case model.Neuter:
		return c.Neuter
	default:
		return c.Total
	}
}

// Share returns the fraction of the filtered words with gender g.
func (c Counts) Share(g model.Gender) float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Get(g)) / float64(c.Total)
}

func countsOf(row model.EndingStats) Counts {
	return Counts{
		Feminine:  row.Counts[model.Feminine],
		Masculine: row.Counts[model.Masculine],
		Neuter:    row.Counts[model.Neuter],
		Total:     row.Total,
	}
}

// State is the selection of one dashboard session.
type State struct {
	Phase          Phase        `json:"phase"`
	SelectedEnding string       `json:"selected_ending"`
	Exceptions     []string     `json:"exceptions"`
	TableFilter    string       `json:"table_filter"`
	Counts         Counts       `json:"counts"`
	SelectedGender model.Gender `json:"selected_gender"`
	TotalSelected  bool         `json:"total_selected"`
	Aspect         Aspect       `json:"aspect"`
	KeyEndingCount int          `json:"key_ending_count"`
	KeyWordCount   int          `json:"key_word_count"`
}

// WordRow is one line of a gender word table.
type WordRow struct {
	Word  string `json:"word"`
	Usage int    `json:"usage"`
}

// Machine applies events against an immutable report.
type Machine struct {
	index      *lexicon.Index
	exceptions model.ExceptionMap
	summary    map[model.Gender]model.GenderSummary
	overall    model.GenderSummary
}

// NewMachine creates a machine over the report's tables.
func NewMachine(report stats.Report) *Machine {
	return &Machine{
		index:      report.Index,
		exceptions: report.Exceptions,
		summary:    report.Summary,
		overall:    report.Overall,
	}
}

// Apply returns the state that follows s after ev. It never fails: events
// that select nothing lead to the corresponding reset state. Only the user's
// choices in s are trusted; everything derived is recomputed from the report.
func (m *Machine) Apply(s State, ev Event) State {
	s = m.sanitize(s)
	switch e := ev.(type) {
	case EndingClick:
		return m.selectEnding(s, e.Label)
	case ExceptionClick:
		return m.selectException(s, e.Label)
	case GenderAspectClick:
		return m.selectGender(s, e)
	default:
		return State{}
	}
}

func (m *Machine) selectEnding(s State, label string) State {
	ending := stats.NormalizeEnding(label)
	if ending == "" {
		return State{}
	}
	next := s
	next.Phase = EndingSelected
	next.SelectedEnding = ending
	next.Exceptions = m.exceptionsOf(ending)
	next.TableFilter = ending
	next.Counts = m.lookup(ending)
	return next
}

func (m *Machine) selectException(s State, label string) State {
	next := s
	word := stats.NormalizeEnding(label)
	if s.SelectedEnding == "" || word == "" || !contains(m.exceptionsOf(s.SelectedEnding), word) {
		next.Phase = Unselected
		next.TableFilter = ""
		next.Counts = Counts{}
		return next
	}
	next.Phase = ExceptionSelected
	next.TableFilter = word
	next.Counts = m.lookup(word)
	return next
}

func (m *Machine) selectGender(s State, e GenderAspectClick) State {
	return m.withGender(s, e.Gender, e.Gender == "", e.Aspect)
}

// withGender fills the gender fields from the summaries. total selects the
// "total" column; otherwise an invalid gender clears the selection.
func (m *Machine) withGender(s State, gender model.Gender, total bool, aspect Aspect) State {
	next := s
	if aspect != AspectCoverage {
		aspect = AspectAccuracy
	}
	switch {
	case total:
		next.SelectedGender = ""
		next.TotalSelected = true
		next.KeyEndingCount = m.overall.NumKeyEndings
		next.KeyWordCount = m.overall.TotalCoverage
	case gender.Valid():
		summary := m.summary[gender]
		next.SelectedGender = gender
		next.TotalSelected = false
		next.KeyEndingCount = summary.NumKeyEndings
		next.KeyWordCount = summary.TotalCoverage
	default:
		next.SelectedGender = ""
		next.TotalSelected = false
		next.Aspect = ""
		next.KeyEndingCount = 0
		next.KeyWordCount = 0
		return next
	}
	next.Aspect = aspect
	return next
}

// sanitize rebuilds every derived field of an incoming state from the report,
// keeping only the user's choices: the ending, the exception filter, the
// gender and the aspect. Exception filters the ending does not list are
// dropped.
func (m *Machine) sanitize(s State) State {
	out := State{}
	if ending := stats.NormalizeEnding(s.SelectedEnding); ending != "" {
		out.SelectedEnding = ending
		out.Exceptions = m.exceptionsOf(ending)
		switch s.Phase {
		case EndingSelected:
			out.Phase = EndingSelected
			out.TableFilter = ending
		case ExceptionSelected:
			if word := stats.NormalizeEnding(s.TableFilter); contains(out.Exceptions, word) {
				out.Phase = ExceptionSelected
				out.TableFilter = word
			}
		}
		out.Counts = m.lookup(out.TableFilter)
	}
	if s.TotalSelected || s.SelectedGender.Valid() {
		out = m.withGender(out, s.SelectedGender, s.TotalSelected, s.Aspect)
	}
	return out
}

func (m *Machine) exceptionsOf(ending string) []string {
	exceptions, _ := m.exceptions.Get(ending)
	if exceptions == nil {
		exceptions = []string{}
	}
	return exceptions
}

func (m *Machine) lookup(filter string) Counts {
	if filter == "" || m.index == nil {
		return Counts{}
	}
	return countsOf(stats.Lookup(m.index.Ending(filter), filter))
}

// Tables returns the words matching the state's filter, split by gender and
// ordered by usage descending. Every gender is present, possibly empty.
func (m *Machine) Tables(s State) map[model.Gender][]WordRow {
	out := make(map[model.Gender][]WordRow, len(model.Genders))
	for _, g := range model.Genders {
		out[g] = []WordRow{}
	}
	if s.TableFilter == "" {
		return out
	}
	for _, rec := range m.index.Ending(s.TableFilter) {
		if !rec.Gender.Valid() {
			continue
		}
		out[rec.Gender] = append(out[rec.Gender], WordRow{Word: rec.Word, Usage: rec.Usage})
	}
	for _, rows := range out {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Usage != rows[j].Usage {
				return rows[i].Usage > rows[j].Usage
			}
			return rows[i].Word < rows[j].Word
		})
	}
	return out
}

// KeyEndings returns the key endings matching the state's gender selection.
func (m *Machine) KeyEndings(keys []model.KeyEnding, s State) []model.KeyEnding {
	if !s.TotalSelected && s.SelectedGender == "" {
		return nil
	}
	return stats.FilterKeyEndings(keys, s.SelectedGender)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
