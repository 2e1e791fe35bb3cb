package stats

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/derdie/internal/model"
)

// DefaultKeyCount is the number of key endings selected by default.
const DefaultKeyCount = 30

// DefaultMinKeyAccuracy is the accuracy a key ending must reach by default.
const DefaultMinKeyAccuracy = 0.9

// SelectKeyEndings picks at most n endings reaching minAccuracy, largest first.
// An ending nested in an already chosen one (or the reverse) is skipped so the
// chosen endings never share words.
func SelectKeyEndings(rows []model.EndingStats, totalNouns, n int, minAccuracy float64) []model.KeyEnding {
	candidates := append([]model.EndingStats(nil), rows...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Total > candidates[j].Total
	})
	var chosen []model.KeyEnding
	for _, row := range candidates {
		if n > 0 && len(chosen) >= n {
			break
		}
		if row.Total == 0 || row.Accuracy < minAccuracy {
			continue
		}
		if overlapsAny(row.Ending, chosen) {
			continue
		}
		chosen = append(chosen, model.KeyEnding{
			Ending:   row.Ending,
			Gender:   row.Majority(),
			Total:    row.Total,
			Accuracy: row.Accuracy,
			Coverage: ratio(row.Total, totalNouns),
		})
	}
	return chosen
}

// KeyEndingIDs returns the endings of the key endings.
func KeyEndingIDs(keys []model.KeyEnding) []string {
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.Ending
	}
	return ids
}

// FilterKeyEndings keeps the key endings of one gender. An empty gender keeps
// all of them. The result is ordered by total descending.
func FilterKeyEndings(keys []model.KeyEnding, gender model.Gender) []model.KeyEnding {
	out := make([]model.KeyEnding, 0, len(keys))
	for _, k := range keys {
		if gender != "" && k.Gender != gender {
			continue
		}
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// Summarize aggregates the key endings per majority gender. The accuracy of a
// gender is the mean of its endings' accuracies weighted by their totals.
// A key ending nested in an earlier one (or the reverse) is ignored, so no word
// is counted twice and coverage stays within [0, 1].
func Summarize(rows []model.EndingStats, keyEndingIDs []string, totalNouns int) map[model.Gender]model.GenderSummary {
	keys := make(map[string]struct{}, len(keyEndingIDs))
	var kept []string
	for _, id := range NormalizeEndings(keyEndingIDs) {
		if nestedInAny(id, kept) {
			continue
		}
		kept = append(kept, id)
		keys[id] = struct{}{}
	}
	type acc struct {
		values  []float64
		weights []float64
	}
	per := map[model.Gender]*acc{}
	out := make(map[model.Gender]model.GenderSummary, len(model.Genders))
	for _, g := range model.Genders {
		per[g] = &acc{}
		out[g] = model.GenderSummary{Gender: g}
	}
	for _, row := range rows {
		if _, ok := keys[row.Ending]; !ok || row.Total == 0 {
			continue
		}
		g := row.Majority()
		summary := out[g]
		summary.NumKeyEndings++
		summary.TotalCoverage += row.Total
		out[g] = summary
		per[g].values = append(per[g].values, row.Accuracy)
		per[g].weights = append(per[g].weights, float64(row.Total))
	}
	for _, g := range model.Genders {
		summary := out[g]
		summary.CoveragePct = ratio(summary.TotalCoverage, totalNouns)
		if summary.TotalCoverage > 0 {
			summary.AccuracyPct = stat.Mean(per[g].values, per[g].weights)
		}
		out[g] = summary
	}
	return out
}

// Overall combines per-gender summaries into the "total" column.
func Overall(summaries map[model.Gender]model.GenderSummary, totalNouns int) model.GenderSummary {
	total := model.GenderSummary{}
	var values, weights []float64
	for _, g := range model.Genders {
		s, ok := summaries[g]
		if !ok {
			continue
		}
		total.NumKeyEndings += s.NumKeyEndings
		total.TotalCoverage += s.TotalCoverage
		if s.TotalCoverage > 0 {
			values = append(values, s.AccuracyPct)
			weights = append(weights, float64(s.TotalCoverage))
		}
	}
	total.CoveragePct = ratio(total.TotalCoverage, totalNouns)
	if total.TotalCoverage > 0 {
		total.AccuracyPct = stat.Mean(values, weights)
	}
	return total
}

func overlapsAny(ending string, chosen []model.KeyEnding) bool {
	return nestedInAny(ending, KeyEndingIDs(chosen))
}

func nestedInAny(ending string, endings []string) bool {
	for _, other := range endings {
		if strings.HasSuffix(ending, other) || strings.HasSuffix(other, ending) {
			return true
		}
	}
	return false
}

func ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
