package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/derdie/internal/model"
)

type ansiColor struct {
	name string
	code string
}

const (
	minPlotWidth        = 10
	barSeparator        = " │ "
	barNote             = "Bars show the gender split per ending; accuracy on the right."
	colorReset          = "\x1b[0m"
	highlightOn         = "\x1b[1m"
	terminalWidthBackup = 80
	accuracyLabelWidth  = len(" 100%")
)

var genderPalette = map[model.Gender]ansiColor{
	model.Feminine:  {name: "red", code: "\x1b[31m"},
	model.Masculine: {name: "blue", code: "\x1b[34m"},
	model.Neuter:    {name: "green", code: "\x1b[32m"},
}

var genderGlyphs = map[model.Gender]rune{
	model.Feminine:  '█',
	model.Masculine: '▓',
	model.Neuter:    '░',
}

// PlotEndings renders one horizontal stacked bar per ending. Each bar is
// split by gender and scaled to the largest ending.
func PlotEndings(w io.Writer, title string, rows []model.EndingStats, width int) error {
	return plotEndings(w, title, rows, width, "", false)
}

// PlotEndingsWithColor renders the bars with an optional highlighted ending
// and forced color output.
func PlotEndingsWithColor(w io.Writer, title string, rows []model.EndingStats, width int, highlight string, forceColor bool) error {
	return plotEndings(w, title, rows, width, highlight, forceColor)
}

func plotEndings(w io.Writer, title string, rows []model.EndingStats, width int, highlight string, forceColor bool) error {
	if len(rows) == 0 {
		return nil
	}
	labelWidth := 0
	maxTotal := 0
	for _, r := range rows {
		if lw := runewidth.StringWidth(r.Ending); lw > labelWidth {
			labelWidth = lw
		}
		if r.Total > maxTotal {
			maxTotal = r.Total
		}
	}
	if width <= 0 {
		width = autoPlotWidth(labelWidth)
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	useColor := shouldUseColor(w, forceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, barNote); err != nil {
		return err
	}
	for _, r := range rows {
		label := padCell(r.Ending, labelWidth, false)
		var line strings.Builder
		if useColor && r.Ending == highlight {
			line.WriteString(highlightOn)
			line.WriteString(label)
			line.WriteString(colorReset)
		} else {
			line.WriteString(label)
		}
		line.WriteString(barSeparator)
		bar, used := renderBar(r, maxTotal, width, useColor)
		line.WriteString(bar)
		line.WriteString(strings.Repeat(" ", width-used))
		if r.Total > 0 {
			line.WriteString(fmt.Sprintf(" %3d%%", r.AccuracyPct()))
		} else {
			line.WriteString("    -")
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// renderBar returns the bar text and the number of cells it occupies.
func renderBar(r model.EndingStats, maxTotal, width int, useColor bool) (string, int) {
	if maxTotal <= 0 || r.Total <= 0 {
		return "", 0
	}
	cells := barCells(r, maxTotal, width)
	var b strings.Builder
	used := 0
	for i, g := range model.Genders {
		if cells[i] == 0 {
			continue
		}
		segment := strings.Repeat(string(genderGlyphs[g]), cells[i])
		if useColor {
			segment = genderPalette[g].code + segment + colorReset
		}
		b.WriteString(segment)
		used += cells[i]
	}
	return b.String(), used
}

// barCells splits the scaled bar length across genders. Rounding error goes
// to the majority gender so the segments always sum to the bar length.
func barCells(r model.EndingStats, maxTotal, width int) []int {
	length := int(math.Round(float64(r.Total) / float64(maxTotal) * float64(width)))
	if length < 1 {
		length = 1
	}
	if length > width {
		length = width
	}
	cells := make([]int, len(model.Genders))
	assigned := 0
	for i, g := range model.Genders {
		cells[i] = int(math.Floor(float64(r.Counts[g]) / float64(r.Total) * float64(length)))
		assigned += cells[i]
	}
	if rest := length - assigned; rest > 0 {
		idx := 0
		if maj := r.Majority(); maj != "" {
			for i, g := range model.Genders {
				if g == maj {
					idx = i
				}
			}
		}
		cells[idx] += rest
	}
	return cells
}

func autoPlotWidth(labelWidth int) int {
	return PlotWidthFor(terminalWidth() - labelWidth)
}

// PlotWidthFor computes a bar width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - runewidth.StringWidth(barSeparator) - accuracyLabelWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func renderLegend(useColor bool) string {
	parts := make([]string, 0, len(model.Genders))
	for _, g := range model.Genders {
		label := fmt.Sprintf("%c %s (%s)", genderGlyphs[g], g.Label(), g.Article())
		if useColor {
			label = genderPalette[g].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
