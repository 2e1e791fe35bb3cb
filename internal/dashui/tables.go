package dashui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
)

const (
	usageColumnWidth = 8
	tableGap         = 2
)

func (m *Model) initTables() {
	m.tables = make(map[model.Gender]table.Model, len(model.Genders))
	for _, g := range model.Genders {
		m.tables[g] = buildWordTable(nil, 0, 1)
	}
}

func buildWordTable(rows []selection.WordRow, width, height int) table.Model {
	t := table.New(
		table.WithColumns(wordTableColumns(width)),
		table.WithRows(wordTableRows(rows)),
		table.WithHeight(maxInt(1, height)),
	)
	t.SetStyles(wordTableStyles())
	return t
}

func wordTableColumns(width int) []table.Column {
	wordWidth := maxInt(6, width-usageColumnWidth-1)
	return []table.Column{
		{Title: "Word", Width: wordWidth},
		{Title: "Usage", Width: usageColumnWidth},
	}
}

func wordTableRows(rows []selection.WordRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{r.Word, stats.FormatCount(r.Usage)})
	}
	return out
}

func wordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell
	return styles
}

// tableWidth is the width of one of the three side by side tables.
func tableWidth(total int) int {
	return maxInt(1, (total-tableGap*(len(model.Genders)-1))/len(model.Genders))
}

// resizeTables fits the tables into a block of the given size. One row of the
// block holds the table titles.
func (m *Model) resizeTables(width, height int) {
	w := tableWidth(width)
	for g, t := range m.tables {
		t.SetColumns(wordTableColumns(w))
		t.SetWidth(w)
		t.SetHeight(maxInt(1, height-1))
		m.tables[g] = t
	}
}

func (m *Model) refreshTables() {
	if m.machine == nil {
		return
	}
	rows := m.machine.Tables(m.state)
	for _, g := range model.Genders {
		t := m.tables[g]
		t.SetRows(wordTableRows(rows[g]))
		t.GotoTop()
		m.tables[g] = t
	}
}

func (m *Model) renderGenderTables() string {
	w := tableWidth(m.width)
	blocks := make([]string, 0, len(model.Genders)*2)
	for i, g := range model.Genders {
		t := m.tables[g]
		title := genderStyles[g].Bold(true).Render(
			truncateLine(fmt.Sprintf("%s (%s) %s", g.Article(), g.Label(), stats.FormatCount(len(t.Rows()))), w))
		block := lipgloss.NewStyle().Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, t.View()))
		if i > 0 {
			blocks = append(blocks, lipgloss.NewStyle().Width(tableGap).Render(""))
		}
		blocks = append(blocks, block)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}
