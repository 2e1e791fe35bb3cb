// Package charts renders the dashboard charts as standalone HTML pages.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/stats"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Width  string // Chart width (e.g., "900px")
	Height string // Chart height (e.g., "500px")
	Theme  string
	Top    int // Number of endings shown, <= 0 for all
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Top:    stats.DefaultTop,
	}
}

var genderColors = map[model.Gender]string{
	model.Feminine:  "#EE6666",
	model.Masculine: "#5470C6",
	model.Neuter:    "#3BA272",
}

const totalColor = "#FAC858"

// Page names written by WriteAll.
const (
	EndingsPage    = "endings.html"
	SummaryPage    = "summary.html"
	ExceptionsPage = "exceptions.html"
)

func newBar(cfg ChartConfig, title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  cfg.Width,
			Height: cfg.Height,
			Theme:  cfg.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
	)
	return bar
}

// EndingsChart stacks the gender counts of every ending. A gender that never
// occurs is left out of the chart.
func EndingsChart(rows []model.EndingStats, cfg ChartConfig, title string) *charts.Bar {
	rows = stats.Top(rows, cfg.Top)
	bar := newBar(cfg, title, fmt.Sprintf("%d words", stats.TotalWords(rows)))
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Ending
	}
	bar.SetXAxis(labels)

	var colors opts.Colors
	for _, g := range model.Genders {
		data := make([]opts.BarData, len(rows))
		seen := false
		for i, r := range rows {
			c := r.Counts[g]
			if c > 0 {
				seen = true
			}
			data[i] = opts.BarData{Value: c}
		}
		if !seen {
			continue
		}
		colors = append(colors, genderColors[g])
		bar.AddSeries(seriesName(g), data, charts.WithBarChartOpts(opts.BarChart{Stack: "gender"}))
	}
	bar.SetGlobalOptions(charts.WithColorsOpts(colors))
	return bar
}

// AccuracyChart shows the accuracy of every ending in percent.
func AccuracyChart(rows []model.EndingStats, cfg ChartConfig) *charts.Bar {
	rows = stats.Top(rows, cfg.Top)
	bar := newBar(cfg, "Accuracy per ending", "share of the majority gender")
	labels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		labels[i] = r.Ending
		data[i] = opts.BarData{
			Value:     r.AccuracyPct(),
			ItemStyle: &opts.ItemStyle{Color: genderColors[r.Majority()]},
		}
	}
	bar.SetXAxis(labels).
		AddSeries("Accuracy %", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// SummaryChart groups accuracy and coverage per gender plus the total column.
func SummaryChart(summary map[model.Gender]model.GenderSummary, overall model.GenderSummary, cfg ChartConfig) *charts.Bar {
	bar := newBar(cfg, "Key endings", "accuracy and coverage per gender")
	labels := make([]string, 0, len(model.Genders)+1)
	accuracy := make([]opts.BarData, 0, len(model.Genders)+1)
	coverage := make([]opts.BarData, 0, len(model.Genders)+1)
	add := func(label string, s model.GenderSummary) {
		labels = append(labels, label)
		accuracy = append(accuracy, opts.BarData{Value: percent(s.AccuracyPct)})
		coverage = append(coverage, opts.BarData{Value: percent(s.CoveragePct)})
	}
	for _, g := range model.Genders {
		if s, ok := summary[g]; ok {
			add(g.Label(), s)
		}
	}
	add("Total", overall)
	bar.SetGlobalOptions(charts.WithColorsOpts(opts.Colors{genderColors[model.Masculine], totalColor}))
	bar.SetXAxis(labels).
		AddSeries("Accuracy %", accuracy).
		AddSeries("Coverage %", coverage).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// KeyEndingsChart shows the word count of each key ending, colored by gender.
func KeyEndingsChart(keys []model.KeyEnding, cfg ChartConfig) *charts.Bar {
	bar := newBar(cfg, "Key endings by size", fmt.Sprintf("%d endings", len(keys)))
	labels := make([]string, len(keys))
	data := make([]opts.BarData, len(keys))
	for i, k := range keys {
		labels[i] = k.Ending
		data[i] = opts.BarData{
			Name:      fmt.Sprintf("%s (%s)", k.Ending, k.Gender.Article()),
			Value:     k.Total,
			ItemStyle: &opts.ItemStyle{Color: genderColors[k.Gender]},
		}
	}
	bar.SetXAxis(labels).AddSeries("Words", data)
	return bar
}

// RenderEndings writes the ending page: gender split and accuracy.
func RenderEndings(w io.Writer, rows []model.EndingStats, cfg ChartConfig) error {
	page := components.NewPage()
	page.PageTitle = "Endings"
	page.AddCharts(
		EndingsChart(rows, cfg, "Gender per ending"),
		AccuracyChart(rows, cfg),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderSummary writes the key ending page.
func RenderSummary(w io.Writer, report stats.Report, cfg ChartConfig) error {
	page := components.NewPage()
	page.PageTitle = "Key endings"
	page.AddCharts(
		SummaryChart(report.Summary, report.Overall, cfg),
		KeyEndingsChart(report.KeyEndings, cfg),
		EndingsChart(report.KeyStats, ChartConfig{Width: cfg.Width, Height: cfg.Height, Theme: cfg.Theme}, "Key endings without exceptions"),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderExceptions writes one chart per ending that has exceptions.
func RenderExceptions(w io.Writer, report stats.Report, cfg ChartConfig) error {
	page := components.NewPage()
	page.PageTitle = "Exceptions"
	for _, ending := range report.Exceptions.Endings() {
		rows := report.ExceptionStats(ending)
		if len(rows) == 0 {
			continue
		}
		page.AddCharts(EndingsChart(rows, cfg, fmt.Sprintf("Exceptions of -%s", ending)))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteAll writes every chart page into dir and returns the written paths.
func WriteAll(dir string, report stats.Report, cfg ChartConfig) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}
	pages := []struct {
		name   string
		render func(io.Writer) error
	}{
		{EndingsPage, func(w io.Writer) error { return RenderEndings(w, report.Endings, cfg) }},
		{SummaryPage, func(w io.Writer) error { return RenderSummary(w, report, cfg) }},
		{ExceptionsPage, func(w io.Writer) error { return RenderExceptions(w, report, cfg) }},
	}
	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		path := filepath.Join(dir, p.name)
		if err := writeFile(path, p.render); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", cerr)
		}
	}()
	return render(f)
}

func seriesName(g model.Gender) string {
	return fmt.Sprintf("%s (%s)", g.Label(), g.Article())
}

func percent(v float64) float64 {
	return float64(int(v*1000+0.5)) / 10
}
