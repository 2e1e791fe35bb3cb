package dashui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
	"github.com/verte-zerg/derdie/internal/store"
)

var testNouns = []model.Noun{
	{Word: "Sonne", Gender: model.Feminine, Usage: 50},
	{Word: "Katze", Gender: model.Feminine, Usage: 20},
	{Word: "Name", Gender: model.Masculine, Usage: 40},
	{Word: "Bote", Gender: model.Masculine, Usage: 5},
	{Word: "Zeitung", Gender: model.Feminine, Usage: 60},
	{Word: "Wohnung", Gender: model.Feminine, Usage: 30},
	{Word: "Lehrer", Gender: model.Masculine, Usage: 25},
	{Word: "Tier", Gender: model.Neuter, Usage: 35},
}

func reportLoader(calls *int) Loader {
	return func(context.Context) (stats.Report, error) {
		if calls != nil {
			*calls++
		}
		return stats.NewReport(testNouns, nil, model.DashboardConfig{
			Top:            stats.DefaultTop,
			KeyCount:       stats.DefaultKeyCount,
			MinKeyAccuracy: stats.DefaultMinKeyAccuracy,
		}), nil
	}
}

func newSizedModel(t *testing.T, load Loader) *Model {
	t.Helper()
	m := NewModel(load, stats.DefaultTop, nil)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tableWords(m *Model, g model.Gender) []string {
	var out []string
	for _, row := range m.tables[g].Rows() {
		out = append(out, row[0])
	}
	return out
}

func TestNotInitializedShowsNotice(t *testing.T) {
	calls := 0
	m := newSizedModel(t, func(context.Context) (stats.Report, error) {
		calls++
		return stats.Report{}, store.ErrEmpty
	})
	require.True(t, m.notInitialized)
	require.Contains(t, m.View(), "Dashboard not initialized")

	press(m, tea.KeyMsg{Type: tea.KeyEnter}, runeKey("f"))
	require.Equal(t, selection.State{}, m.State())

	press(m, runeKey("r"))
	require.Equal(t, 2, calls)
	require.True(t, m.notInitialized)
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := newSizedModel(t, func(context.Context) (stats.Report, error) {
		return stats.Report{}, errors.New("disk on fire")
	})
	require.False(t, m.notInitialized)
	require.Contains(t, m.View(), "disk on fire")
}

func TestEnterSelectsEndingAtCursor(t *testing.T) {
	m := newSizedModel(t, reportLoader(nil))
	require.Contains(t, m.View(), "Endings")

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	s := m.State()
	require.Equal(t, selection.EndingSelected, s.Phase)
	require.Equal(t, "e", s.TableFilter)
	require.Equal(t, []string{"yte", "bote", "see"}, s.Exceptions)
	require.Equal(t, selection.Counts{Feminine: 2, Masculine: 2, Total: 4}, s.Counts)
	require.Equal(t, []string{"Sonne", "Katze"}, tableWords(m, model.Feminine))
	require.Equal(t, []string{"Name", "Bote"}, tableWords(m, model.Masculine))
	require.Empty(t, tableWords(m, model.Neuter))

	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	s = m.State()
	require.Equal(t, "ng", s.TableFilter)
	require.Equal(t, []string{"Zeitung", "Wohnung"}, tableWords(m, model.Feminine))
}

func TestExceptionPaneSelection(t *testing.T) {
	m := newSizedModel(t, reportLoader(nil))
	press(m,
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	s := m.State()
	require.Equal(t, selection.ExceptionSelected, s.Phase)
	require.Equal(t, "bote", s.TableFilter)
	require.Equal(t, "e", s.SelectedEnding)
	require.Equal(t, []string{"Bote"}, tableWords(m, model.Masculine))
	require.Empty(t, tableWords(m, model.Feminine))

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	s = m.State()
	require.Equal(t, selection.Unselected, s.Phase)
	require.Equal(t, "", s.SelectedEnding)
	require.Empty(t, tableWords(m, model.Masculine))
	require.Equal(t, paneEndings, m.focus)
}

func TestTabWithoutExceptionsKeepsEndingFocus(t *testing.T) {
	m := newSizedModel(t, reportLoader(nil))
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, paneEndings, m.focus)
}

func TestGenderKeysOnKeyStats(t *testing.T) {
	m := newSizedModel(t, reportLoader(nil))
	press(m, runeKey("f"))
	require.Equal(t, model.Gender(""), m.State().SelectedGender, "gender keys are ignored on the endings tab")

	press(m, tea.KeyMsg{Type: tea.KeyRight}, runeKey("f"))
	s := m.State()
	require.Equal(t, model.Feminine, s.SelectedGender)
	require.Equal(t, 1, s.KeyEndingCount)
	require.Equal(t, 2, s.KeyWordCount)
	require.Contains(t, m.View(), "Key endings for die (Feminine)")

	press(m, runeKey("c"))
	require.Equal(t, selection.AspectCoverage, m.State().Aspect)

	press(m, runeKey("t"))
	s = m.State()
	require.True(t, s.TotalSelected)
	require.Equal(t, 2, s.KeyEndingCount)
	require.Equal(t, 3, s.KeyWordCount)
}

func TestReloadResetsSelection(t *testing.T) {
	calls := 0
	m := newSizedModel(t, reportLoader(&calls))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, selection.EndingSelected, m.State().Phase)

	press(m, runeKey("r"))
	require.Equal(t, 2, calls)
	require.Equal(t, selection.State{}, m.State())
}

func TestViewFitsWindow(t *testing.T) {
	m := newSizedModel(t, reportLoader(nil))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	for i := 0; i < len(m.tabs); i++ {
		lines := strings.Split(m.View(), "\n")
		require.Len(t, lines, 40)
		press(m, tea.KeyMsg{Type: tea.KeyRight})
	}
}

func TestClamp(t *testing.T) {
	require.Equal(t, 0, clamp(-1, 0, 5))
	require.Equal(t, 5, clamp(9, 0, 5))
	require.Equal(t, 0, clamp(3, 0, -1))
}
