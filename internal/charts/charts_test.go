package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/stats"
)

func testReport() stats.Report {
	nouns := []model.Noun{
		{Word: "Zeitung", Gender: model.Feminine, Usage: 60},
		{Word: "Wohnung", Gender: model.Feminine, Usage: 30},
		{Word: "Lehrer", Gender: model.Masculine, Usage: 25},
		{Word: "Bote", Gender: model.Masculine, Usage: 5},
		{Word: "Sonne", Gender: model.Feminine, Usage: 50},
	}
	return stats.NewReport(nouns, nil, model.DashboardConfig{
		KeyCount:       stats.DefaultKeyCount,
		MinKeyAccuracy: stats.DefaultMinKeyAccuracy,
	})
}

func TestRenderEndingsOmitsMissingGender(t *testing.T) {
	rows := []model.EndingStats{
		{Ending: "ung", Counts: map[model.Gender]int{model.Feminine: 2}, Total: 2, Accuracy: 1},
		{Ending: "er", Counts: map[model.Gender]int{model.Masculine: 1}, Total: 1, Accuracy: 1},
	}
	var buf bytes.Buffer
	if err := RenderEndings(&buf, rows, DefaultChartConfig()); err != nil {
		t.Fatalf("render endings: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"echarts", "Feminine (die)", "Masculine (der)", "ung"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in chart output", want)
		}
	}
	if strings.Contains(out, "Neuter") {
		t.Fatalf("expected the neuter series to be omitted")
	}
}

func TestEndingsChartRespectsTop(t *testing.T) {
	rows := []model.EndingStats{
		{Ending: "aaa", Counts: map[model.Gender]int{model.Feminine: 3}, Total: 3},
		{Ending: "bbb", Counts: map[model.Gender]int{model.Feminine: 2}, Total: 2},
		{Ending: "ccc", Counts: map[model.Gender]int{model.Feminine: 1}, Total: 1},
	}
	cfg := DefaultChartConfig()
	cfg.Top = 2
	var buf bytes.Buffer
	if err := RenderEndings(&buf, rows, cfg); err != nil {
		t.Fatalf("render endings: %v", err)
	}
	if strings.Contains(buf.String(), "ccc") {
		t.Fatalf("expected ending beyond the cap to be dropped")
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := WriteAll(dir, testReport(), DefaultChartConfig())
	if err != nil {
		t.Fatalf("write charts: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(paths))
	}
	summary, err := os.ReadFile(filepath.Join(dir, SummaryPage))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{"Accuracy %", "Coverage %", "Total"} {
		if !strings.Contains(string(summary), want) {
			t.Fatalf("expected %q in summary page", want)
		}
	}
	exceptions, err := os.ReadFile(filepath.Join(dir, ExceptionsPage))
	if err != nil {
		t.Fatalf("read exceptions: %v", err)
	}
	if !strings.Contains(string(exceptions), "bote") {
		t.Fatalf("expected the bote exception in the exceptions page")
	}
}
