package selection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/stats"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	nouns := []model.Noun{
		{Word: "Sonne", Gender: model.Feminine, Usage: 50},
		{Word: "Katze", Gender: model.Feminine, Usage: 20},
		{Word: "Name", Gender: model.Masculine, Usage: 40},
		{Word: "Bote", Gender: model.Masculine, Usage: 5},
		{Word: "Zeitung", Gender: model.Feminine, Usage: 60},
		{Word: "Wohnung", Gender: model.Feminine, Usage: 30},
	}
	report := stats.NewReport(nouns, nil, model.DashboardConfig{
		KeyCount:       stats.DefaultKeyCount,
		MinKeyAccuracy: stats.DefaultMinKeyAccuracy,
	})
	return NewMachine(report)
}

func TestEndingThenOutOfRangeExceptionResets(t *testing.T) {
	m := newTestMachine(t)

	s := m.Apply(State{}, EndingClick{Label: "e"})
	require.Equal(t, EndingSelected, s.Phase)
	require.Equal(t, "e", s.TableFilter)
	require.Equal(t, []string{"yte", "bote", "see"}, s.Exceptions)
	require.Equal(t, Counts{Feminine: 2, Masculine: 2, Total: 4}, s.Counts)
	require.InDelta(t, 0.5, s.Counts.Share(model.Feminine), 1e-9)

	s = m.Apply(s, ExceptionClick{Label: "out of range"})
	require.Equal(t, Unselected, s.Phase)
	require.Equal(t, "", s.TableFilter)
	require.Equal(t, Counts{}, s.Counts)
	for _, g := range model.Genders {
		require.Zero(t, s.Counts.Get(g))
		require.Zero(t, s.Counts.Share(g))
	}
	require.Equal(t, "e", s.SelectedEnding, "the ending and its exceptions stay visible")

	tables := m.Tables(s)
	for _, g := range model.Genders {
		require.Empty(t, tables[g])
	}
}

func TestExceptionClickLooksUpSingleWord(t *testing.T) {
	m := newTestMachine(t)
	s := m.Apply(State{}, EndingClick{Label: "E"})
	s = m.Apply(s, ExceptionClick{Label: "bote"})
	require.Equal(t, ExceptionSelected, s.Phase)
	require.Equal(t, "bote", s.TableFilter)
	require.Equal(t, Counts{Masculine: 1, Total: 1}, s.Counts)

	tables := m.Tables(s)
	require.Equal(t, []WordRow{{Word: "Bote", Usage: 5}}, tables[model.Masculine])
	require.Empty(t, tables[model.Feminine])

	// An exception that exists in the map but matches no noun counts as zero.
	s = m.Apply(s, ExceptionClick{Label: "see"})
	require.Equal(t, ExceptionSelected, s.Phase)
	require.Equal(t, Counts{}, s.Counts)
}

func TestExceptionClickWithoutEnding(t *testing.T) {
	m := newTestMachine(t)
	s := m.Apply(State{}, ExceptionClick{Label: "bote"})
	require.Equal(t, Unselected, s.Phase)
	require.Equal(t, "", s.TableFilter)
	require.Equal(t, Counts{}, s.Counts)
}

func TestTablesSortByUsage(t *testing.T) {
	m := newTestMachine(t)
	s := m.Apply(State{}, EndingClick{Label: "e"})
	tables := m.Tables(s)
	require.Equal(t, []WordRow{{Word: "Sonne", Usage: 50}, {Word: "Katze", Usage: 20}}, tables[model.Feminine])
	require.Equal(t, []WordRow{{Word: "Name", Usage: 40}, {Word: "Bote", Usage: 5}}, tables[model.Masculine])
	require.Empty(t, tables[model.Neuter])
}

func TestNoSelectionAndEmptyEndingReset(t *testing.T) {
	m := newTestMachine(t)
	s := m.Apply(State{}, EndingClick{Label: "ng"})
	require.Equal(t, Counts{Feminine: 2, Total: 2}, s.Counts)
	require.Equal(t, []string{"ang", "ing"}, s.Exceptions)

	require.Equal(t, State{}, m.Apply(s, NoSelection{}))
	require.Equal(t, State{}, m.Apply(s, EndingClick{Label: "  "}))
	require.Equal(t, State{}, m.Apply(s, nil))

	s = m.Apply(State{}, EndingClick{Label: "xyz"})
	require.Equal(t, EndingSelected, s.Phase)
	require.Equal(t, []string{}, s.Exceptions)
	require.Equal(t, Counts{}, s.Counts)
}

func TestGenderAspectClick(t *testing.T) {
	m := newTestMachine(t)
	base := m.Apply(State{}, EndingClick{Label: "e"})

	s := m.Apply(base, GenderAspectClick{Gender: model.Feminine, Aspect: AspectCoverage})
	require.Equal(t, model.Feminine, s.SelectedGender)
	require.False(t, s.TotalSelected)
	require.Equal(t, AspectCoverage, s.Aspect)
	require.Equal(t, 1, s.KeyEndingCount)
	require.Equal(t, 2, s.KeyWordCount)
	require.Equal(t, base.TableFilter, s.TableFilter, "gender clicks leave the table filter alone")

	s = m.Apply(s, GenderAspectClick{})
	require.True(t, s.TotalSelected)
	require.Equal(t, AspectAccuracy, s.Aspect)
	require.Equal(t, 1, s.KeyEndingCount)

	s = m.Apply(s, GenderAspectClick{Gender: model.Gender("x")})
	require.False(t, s.TotalSelected)
	require.Equal(t, model.Gender(""), s.SelectedGender)
	require.Zero(t, s.KeyEndingCount)
}

func TestApplyRecomputesClientState(t *testing.T) {
	m := newTestMachine(t)

	forged := State{
		Phase:          EndingSelected,
		SelectedEnding: "e",
		Exceptions:     []string{"sonne"},
		TableFilter:    "e",
	}
	s := m.Apply(forged, ExceptionClick{Label: "sonne"})
	require.Equal(t, Unselected, s.Phase)
	require.Equal(t, "", s.TableFilter)
	require.Equal(t, []string{"yte", "bote", "see"}, s.Exceptions)

	forged = State{
		Phase:          ExceptionSelected,
		SelectedEnding: "e",
		TableFilter:    "zeitung",
		Counts:         Counts{Feminine: 99, Total: 99},
		KeyEndingCount: 42,
	}
	s = m.Apply(forged, GenderAspectClick{Gender: model.Feminine})
	require.Equal(t, Unselected, s.Phase)
	require.Equal(t, "", s.TableFilter)
	require.Equal(t, Counts{}, s.Counts)
	require.Equal(t, 1, s.KeyEndingCount)

	forged = State{
		Phase:          ExceptionSelected,
		SelectedEnding: "e",
		TableFilter:    "bote",
		Counts:         Counts{Feminine: 99, Total: 99},
		SelectedGender: model.Masculine,
		KeyWordCount:   1000,
	}
	s = m.Apply(forged, GenderAspectClick{Gender: model.Feminine, Aspect: AspectCoverage})
	require.Equal(t, ExceptionSelected, s.Phase)
	require.Equal(t, Counts{Masculine: 1, Total: 1}, s.Counts)
	require.Equal(t, 2, s.KeyWordCount)
}

func TestEnvelopeDecodesEvent(t *testing.T) {
	m := newTestMachine(t)
	body := `{
		"state": {"phase": "ending", "selected_ending": "e", "exceptions": ["yte", "bote", "see"], "table_filter": "e"},
		"event": {"type": "exception", "label": "Bote"}
	}`
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	require.Equal(t, EndingSelected, env.State.Phase)
	require.Equal(t, ExceptionClick{Label: "Bote"}, env.Event)

	next := m.Apply(env.State, env.Event)
	require.Equal(t, "bote", next.TableFilter)

	out, err := json.Marshal(next)
	require.NoError(t, err)
	require.Contains(t, string(out), `"phase":"exception"`)

	var missing Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"state":{}}`), &missing))
	require.Equal(t, NoSelection{}, missing.Event)
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"gender","gender":"die","aspect":"coverage"}`))
	require.NoError(t, err)
	require.Equal(t, GenderAspectClick{Gender: model.Feminine, Aspect: AspectCoverage}, ev)

	ev, err = DecodeEvent([]byte(`{"type":"gender","gender":"total"}`))
	require.NoError(t, err)
	require.Equal(t, GenderAspectClick{}, ev)

	_, err = DecodeEvent([]byte(`{"type":"hover"}`))
	require.Error(t, err)

	data, err := EncodeEvent(EndingClick{Label: "ung"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"ending","label":"ung"}`, string(data))
}
