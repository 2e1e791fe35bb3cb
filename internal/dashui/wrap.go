package dashui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	chipStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	chipCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	chipSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

type styledToken struct {
	s       string
	width   int
	isSpace bool
}

// buildChipTokens renders the exception labels as chips separated by single
// spaces. The cursor chip is underlined while the exception pane has focus.
func buildChipTokens(labels []string, cursor int, selected string, focused bool) []styledToken {
	out := make([]styledToken, 0, len(labels)*2)
	for i, label := range labels {
		if i > 0 {
			out = append(out, styledToken{s: " ", width: 1, isSpace: true})
		}
		text := "[" + label + "]"
		style := chipStyle
		switch {
		case focused && i == cursor:
			style = chipCursorStyle
		case label == selected:
			style = chipSelectedStyle
		}
		out = append(out, styledToken{
			s:     style.Render(text),
			width: runewidth.StringWidth(text),
		})
	}
	return out
}

func renderStyledTokens(tokens []styledToken) string {
	var b strings.Builder
	for _, item := range tokens {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledTokens breaks lines at space tokens. A token wider than the line
// gets a line of its own.
func wrapStyledTokens(tokens []styledToken, width int) string {
	if width <= 0 {
		return renderStyledTokens(tokens)
	}
	var out strings.Builder
	line := make([]styledToken, 0, len(tokens))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(tokens); {
		item := tokens[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderStyledTokens(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledTokens(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledToken{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledTokens(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledTokens(line))
	return out.String()
}

func lineWidthOf(line []styledToken) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledToken) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
