// Package export writes the dashboard tables to an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/stats"
)

// Sheet names in workbook order.
const (
	SheetEndings    = "Endings"
	SheetKeyEndings = "Key Endings"
	SheetSummary    = "Summary"
	SheetWords      = "Words"
)

// Workbook builds the workbook for a report. The caller must close it.
func Workbook(report stats.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetEndings); err != nil {
		closeQuietly(f)
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetKeyEndings, SheetSummary, SheetWords} {
		if _, err := f.NewSheet(name); err != nil {
			closeQuietly(f)
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		closeQuietly(f)
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetEndings, []interface{}{"ending", "f", "m", "n", "total", "accuracy"}, endingRows(report.Endings)},
		{SheetKeyEndings, []interface{}{"rank", "ending", "gender", "total", "accuracy", "coverage"}, keyEndingRows(report.KeyEndings)},
		{SheetSummary, []interface{}{"gender", "key endings", "words", "accuracy", "coverage"}, summaryRows(report)},
		{SheetWords, []interface{}{"word", "gender", "usage"}, wordRows(report.Index.Nouns())},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.rows, header); err != nil {
			closeQuietly(f)
			return nil, err
		}
	}
	return f, nil
}

// WriteFile saves the report workbook at path.
func WriteFile(path string, report stats.Report) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer closeQuietly(f)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Write streams the report workbook to w.
func Write(w io.Writer, report stats.Report) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer closeQuietly(f)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func endingRows(rows []model.EndingStats) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, []interface{}{
			r.Ending,
			r.Counts[model.Feminine],
			r.Counts[model.Masculine],
			r.Counts[model.Neuter],
			r.Total,
			round(r.Accuracy),
		})
	}
	return out
}

func keyEndingRows(keys []model.KeyEnding) [][]interface{} {
	out := make([][]interface{}, 0, len(keys))
	for i, k := range keys {
		out = append(out, []interface{}{i + 1, k.Ending, string(k.Gender), k.Total, round(k.Accuracy), round(k.Coverage)})
	}
	return out
}

func summaryRows(report stats.Report) [][]interface{} {
	out := make([][]interface{}, 0, len(model.Genders)+1)
	add := func(label string, s model.GenderSummary) {
		out = append(out, []interface{}{label, s.NumKeyEndings, s.TotalCoverage, round(s.AccuracyPct), round(s.CoveragePct)})
	}
	for _, g := range model.Genders {
		add(string(g), report.Summary[g])
	}
	add("total", report.Overall)
	return out
}

func wordRows(nouns []model.Noun) [][]interface{} {
	out := make([][]interface{}, 0, len(nouns))
	for _, n := range nouns {
		out = append(out, []interface{}{n.Word, string(n.Gender), n.Usage})
	}
	return out
}

func round(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}

func closeQuietly(f *excelize.File) {
	if cerr := f.Close(); cerr != nil {
		// Best-effort workbook close.
		_ = cerr
	}
}
