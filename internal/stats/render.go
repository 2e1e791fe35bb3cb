package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/derdie/internal/model"
)

// RenderEndingTable prints per-ending counts, totals and accuracy.
func RenderEndingTable(w io.Writer, title string, rows []model.EndingStats) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No endings found.")
		return err
	}
	if title != "" {
		if _, err := fmt.Fprintf(w, "%s %s words\n", title, FormatCount(TotalWords(rows))); err != nil {
			return err
		}
	}
	headers := []string{"Ending", "f", "m", "n", "Total", "Accuracy"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		acc := "-"
		if r.Total > 0 {
			acc = fmt.Sprintf("%d%%", r.AccuracyPct())
		}
		tableRows = append(tableRows, []string{
			r.Ending,
			FormatCount(r.Counts[model.Feminine]),
			FormatCount(r.Counts[model.Masculine]),
			FormatCount(r.Counts[model.Neuter]),
			FormatCount(r.Total),
			acc,
		})
	}
	return writeTable(w, headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
}

// RenderKeyEndingTable prints the key endings.
func RenderKeyEndingTable(w io.Writer, keys []model.KeyEnding) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "No key endings found.")
		return err
	}
	headers := []string{"Ending", "Gender", "Words", "Accuracy", "Coverage"}
	tableRows := make([][]string, 0, len(keys))
	for _, k := range keys {
		tableRows = append(tableRows, []string{
			k.Ending,
			string(k.Gender),
			FormatCount(k.Total),
			FormatPct(k.Accuracy),
			FormatPct(k.Coverage),
		})
	}
	return writeTable(w, headers, tableRows, map[int]bool{2: true, 3: true, 4: true})
}

// RenderSummaryTable prints one column per gender plus the total column.
func RenderSummaryTable(w io.Writer, summary map[model.Gender]model.GenderSummary, overall model.GenderSummary) error {
	headers := []string{"", "f", "m", "n", "total"}
	columns := make([]model.GenderSummary, 0, len(model.Genders)+1)
	for _, g := range model.Genders {
		columns = append(columns, summary[g])
	}
	columns = append(columns, overall)

	row := func(label string, cell func(model.GenderSummary) string) []string {
		out := []string{label}
		for _, c := range columns {
			out = append(out, cell(c))
		}
		return out
	}
	tableRows := [][]string{
		row("Key endings", func(s model.GenderSummary) string { return FormatCount(s.NumKeyEndings) }),
		row("Words", func(s model.GenderSummary) string { return FormatCount(s.TotalCoverage) }),
		row("Accuracy", func(s model.GenderSummary) string { return FormatPct(s.AccuracyPct) }),
		row("Coverage", func(s model.GenderSummary) string { return FormatPct(s.CoveragePct) }),
	}
	return writeTable(w, headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}

// FormatPct renders a fraction as a whole percentage.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	t := newTextTable(headers, rightAlign)
	for _, row := range rows {
		t.add(row...)
	}
	for _, line := range t.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
