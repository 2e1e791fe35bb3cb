package dashui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
)

const aspectBarWidth = 40

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	status := padLines(m.renderStatus(), m.width)
	return tabs + "\n" + status
}

func (m *Model) renderStatus() string {
	if m.notInitialized {
		return headerStyle.Render("No data")
	}
	filter := "none"
	if m.state.TableFilter != "" {
		filter = "-" + m.state.TableFilter
	}
	summary := fmt.Sprintf("Nouns: %s  Endings: %d  Key endings: %d  Filter: %s (%s)",
		stats.FormatCount(m.report.Nouns),
		len(m.report.Endings),
		len(m.report.KeyEndings),
		filter,
		m.state.Phase,
	)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Move: up/down  Select: enter  Exceptions: tab  Clear: esc  Reload: r  Quit: q"
	if m.activeTab != tabEndings {
		help = "Nav: left/right  Gender: f/m/n/t  Aspect: a/c  Scroll: up/down/pgup/pgdn  Clear: esc  Reload: r  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.notInitialized {
		box := noticeStyle.Render(NotInitializedNotice)
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.errMsg != "" {
		return fitLines("Failed to load dashboard.", m.width, height)
	}
	if m.activeTab != tabEndings {
		return fitLines(m.viewports[m.activeTab].View(), m.width, height)
	}
	tablesHeight := tableBlockHeight(height)
	top := fitLines(m.viewports[tabEndings].View(), m.width, maxInt(1, height-tablesHeight))
	if tablesHeight == 0 {
		return top
	}
	return top + "\n" + fitLines(m.renderGenderTables(), m.width, tablesHeight)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.notInitialized || m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabEndings].SetContent(m.renderEndingsPage(width))
	m.viewports[tabKeyStats].SetContent(m.renderKeyStatsPage(width))
	m.viewports[tabSummary].SetContent(m.renderSummaryPage(width))
}

func (m *Model) renderEndingsPage(width int) string {
	endings := m.visibleEndings()
	if len(endings) == 0 {
		return "No endings found."
	}
	cursor := ""
	if m.endingCursor >= 0 && m.endingCursor < len(endings) {
		cursor = endings[m.endingCursor].Ending
	}
	title := fmt.Sprintf("Top %d endings, %s words", len(endings), stats.FormatCount(stats.TotalWords(endings)))
	if m.focus == paneEndings {
		title = focusStyle.Render(title)
	}
	sections := []string{title, renderBars(endings, cursor, width)}

	if m.state.SelectedEnding == "" {
		sections = append(sections, headerStyle.Render("Select an ending to fill the word tables."))
		return strings.TrimRight(strings.Join(sections, "\n"), "\n")
	}

	sections = append(sections, renderCounts(m.state))
	label := fmt.Sprintf("Exceptions of -%s:", m.state.SelectedEnding)
	if m.focus == paneExceptions {
		label = focusStyle.Render(label)
	}
	if len(m.state.Exceptions) == 0 {
		sections = append(sections, label+" "+headerStyle.Render("none"))
	} else {
		selected := ""
		if m.state.Phase == selection.ExceptionSelected {
			selected = m.state.TableFilter
		}
		chips := wrapStyledTokens(buildChipTokens(m.state.Exceptions, m.exceptionCursor, selected, m.focus == paneExceptions), width)
		sections = append(sections, label, chips)
		if rows := m.report.ExceptionStats(m.state.SelectedEnding); len(rows) > 0 {
			sections = append(sections, renderBars(rows, selected, width))
		}
	}
	return strings.TrimRight(strings.Join(sections, "\n"), "\n")
}

func (m *Model) renderKeyStatsPage(width int) string {
	var buf bytes.Buffer
	sections := []string{renderSummaryCards(m.report, width)}
	if err := stats.RenderSummaryTable(&buf, m.report.Summary, m.report.Overall); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	sections = append(sections, strings.TrimRight(buf.String(), "\n"))

	keys := m.machine.KeyEndings(m.report.KeyEndings, m.state)
	if keys == nil {
		sections = append(sections, headerStyle.Render("Press f, m, n or t to list the key endings of a gender."))
		return strings.Join(sections, "\n\n")
	}
	sections = append(sections, fmt.Sprintf("Key endings for %s: %d endings, %s words",
		selectedGenderLabel(m.state), m.state.KeyEndingCount, stats.FormatCount(m.state.KeyWordCount)))
	buf.Reset()
	if err := stats.RenderKeyEndingTable(&buf, keys); err != nil {
		return fmt.Sprintf("Failed to render key endings: %v", err)
	}
	sections = append(sections, strings.TrimRight(buf.String(), "\n"))
	sections = append(sections,
		renderBars(keyStatsFor(m.report.KeyStats, keys), "", width),
		headerStyle.Render("Totals differ from the Endings page because exceptions are excluded."),
	)
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func (m *Model) renderSummaryPage(width int) string {
	aspect := m.aspect
	if m.state.Aspect != "" {
		aspect = m.state.Aspect
	}
	header := []string{"Accuracy (a)", "Coverage (c)"}
	if aspect == selection.AspectCoverage {
		header[1] = focusStyle.Render(header[1])
	} else {
		header[0] = focusStyle.Render(header[0])
	}
	lines := []string{strings.Join(header, "  "), ""}
	barWidth := minInt(aspectBarWidth, maxInt(10, width-20))
	for _, g := range model.Genders {
		s := m.report.Summary[g]
		lines = append(lines, renderAspectBar(string(g), s, aspect, barWidth, genderStyles[g], m.state.SelectedGender == g))
	}
	lines = append(lines, renderAspectBar("total", m.report.Overall, aspect, barWidth, cardValueStyle, m.state.TotalSelected))

	if m.state.TotalSelected || m.state.SelectedGender != "" {
		s := m.report.Overall
		if m.state.SelectedGender != "" {
			s = m.report.Summary[m.state.SelectedGender]
		}
		lines = append(lines, "",
			fmt.Sprintf("%s: %d key endings cover %s words (%s) with %s accuracy.",
				selectedGenderLabel(m.state),
				s.NumKeyEndings,
				stats.FormatCount(s.TotalCoverage),
				stats.FormatPct(s.CoveragePct),
				stats.FormatPct(s.AccuracyPct),
			))
	}
	return strings.Join(lines, "\n")
}

func renderAspectBar(label string, s model.GenderSummary, aspect selection.Aspect, width int, style lipgloss.Style, selected bool) string {
	value := s.AccuracyPct
	if aspect == selection.AspectCoverage {
		value = s.CoveragePct
	}
	filled := int(value*float64(width) + 0.5)
	filled = clamp(filled, 0, width)
	bar := style.Render(strings.Repeat("█", filled)) + headerStyle.Render(strings.Repeat("░", width-filled))
	name := fmt.Sprintf("%-5s", label)
	if selected {
		name = focusStyle.Render(name)
	}
	return fmt.Sprintf("%s %s %4s", name, bar, stats.FormatPct(value))
}

func renderSummaryCards(report stats.Report, width int) string {
	cards := []string{
		metricCard("Nouns", stats.FormatCount(report.Nouns)),
		metricCard("Key endings", fmt.Sprintf("%d", report.Overall.NumKeyEndings)),
		metricCard("Words covered", stats.FormatCount(report.Overall.TotalCoverage)),
		metricCard("Accuracy", stats.FormatPct(report.Overall.AccuracyPct)),
		metricCard("Coverage", stats.FormatPct(report.Overall.CoveragePct)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderBars(rows []model.EndingStats, highlight string, width int) string {
	labelWidth := 0
	for _, r := range rows {
		labelWidth = maxInt(labelWidth, lipgloss.Width(r.Ending))
	}
	var buf bytes.Buffer
	if err := stats.PlotEndingsWithColor(&buf, "", rows, stats.PlotWidthFor(width-labelWidth), highlight, true); err != nil {
		return fmt.Sprintf("Failed to render bars: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderCounts(s selection.State) string {
	parts := make([]string, 0, len(model.Genders)+1)
	for _, g := range model.Genders {
		parts = append(parts, genderStyles[g].Render(fmt.Sprintf("%s %d (%s)", g.Article(), s.Counts.Get(g), stats.FormatPct(s.Counts.Share(g)))))
	}
	parts = append(parts, fmt.Sprintf("total %d", s.Counts.Total))
	filter := "-"
	if s.TableFilter != "" {
		filter = s.TableFilter
	}
	return fmt.Sprintf("Filter %s: %s", filter, strings.Join(parts, "  "))
}

func selectedGenderLabel(s selection.State) string {
	if s.SelectedGender == "" {
		return "all genders"
	}
	return fmt.Sprintf("%s (%s)", s.SelectedGender.Article(), s.SelectedGender.Label())
}

func keyStatsFor(rows []model.EndingStats, keys []model.KeyEnding) []model.EndingStats {
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k.Ending] = struct{}{}
	}
	out := make([]model.EndingStats, 0, len(keys))
	for _, r := range rows {
		if _, ok := wanted[r.Ending]; ok {
			out = append(out, r)
		}
	}
	return out
}
