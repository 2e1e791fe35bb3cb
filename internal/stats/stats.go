// Package stats contains the ending aggregation, exception and summary logic.
package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/derdie/internal/model"
)

// DefaultTop is the number of endings shown in the ending charts.
const DefaultTop = 21

// Aggregate computes one EndingStats per requested ending, ordered by total
// descending. Ties keep the order of endings. Endings without records yield a
// zero row. Endings are compared in lower case on both sides.
func Aggregate(records []model.WordRecord, endings []string) []model.EndingStats {
	order := NormalizeEndings(endings)
	index := make(map[string]int, len(order))
	rows := make([]model.EndingStats, len(order))
	for i, ending := range order {
		index[ending] = i
		rows[i] = model.EndingStats{Ending: ending, Counts: map[model.Gender]int{}}
	}
	for _, rec := range records {
		i, ok := index[NormalizeEnding(rec.Ending)]
		if !ok || !rec.Gender.Valid() {
			continue
		}
		rows[i].Counts[rec.Gender]++
		rows[i].Total++
	}
	for i := range rows {
		rows[i].Accuracy = accuracy(rows[i])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

// Lookup returns the stats for a single filter value.
func Lookup(records []model.WordRecord, ending string) model.EndingStats {
	ending = NormalizeEnding(ending)
	if ending == "" {
		return model.EndingStats{Counts: map[model.Gender]int{}}
	}
	return Aggregate(records, []string{ending})[0]
}

// Top returns at most n rows. n <= 0 keeps every row.
func Top(rows []model.EndingStats, n int) []model.EndingStats {
	if n <= 0 || n >= len(rows) {
		return append([]model.EndingStats(nil), rows...)
	}
	return append([]model.EndingStats(nil), rows[:n]...)
}

// TotalWords sums the totals of the rows.
func TotalWords(rows []model.EndingStats) int {
	total := 0
	for _, r := range rows {
		total += r.Total
	}
	return total
}

// NormalizeEnding lower-cases and trims an ending.
func NormalizeEnding(ending string) string {
	return strings.ToLower(strings.TrimSpace(ending))
}

// NormalizeEndings normalizes endings and drops empty values and duplicates,
// keeping the first occurrence.
func NormalizeEndings(endings []string) []string {
	out := make([]string, 0, len(endings))
	seen := make(map[string]struct{}, len(endings))
	for _, e := range endings {
		e = NormalizeEnding(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func accuracy(row model.EndingStats) float64 {
	if row.Total == 0 {
		return 0
	}
	best := 0
	for _, c := range row.Counts {
		if c > best {
			best = c
		}
	}
	return float64(best) / float64(row.Total)
}
