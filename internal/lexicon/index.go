package lexicon

import (
	"github.com/verte-zerg/derdie/internal/model"
)

// Melt expands every noun into one record per ending of up to maxLen runes.
func Melt(nouns []model.Noun, maxLen int) []model.WordRecord {
	out := make([]model.WordRecord, 0, len(nouns)*maxInt(maxLen, 1))
	for _, n := range nouns {
		for _, ending := range Suffixes(n.Word, maxLen) {
			out = append(out, model.WordRecord{
				Word:   n.Word,
				Gender: n.Gender,
				Usage:  n.Usage,
				Ending: ending,
			})
		}
	}
	return out
}

// Index is a read-only view over the melted noun table. It is safe for
// concurrent readers.
type Index struct {
	nouns    []model.Noun
	records  []model.WordRecord
	byEnding map[string][]model.WordRecord
}

// NewIndex melts the nouns and groups the records by ending.
func NewIndex(nouns []model.Noun, maxLen int) *Index {
	records := Melt(nouns, maxLen)
	byEnding := map[string][]model.WordRecord{}
	for _, rec := range records {
		byEnding[rec.Ending] = append(byEnding[rec.Ending], rec)
	}
	return &Index{
		nouns:    append([]model.Noun(nil), nouns...),
		records:  records,
		byEnding: byEnding,
	}
}

// NounCount returns the number of distinct nouns.
func (ix *Index) NounCount() int {
	if ix == nil {
		return 0
	}
	return len(ix.nouns)
}

// Nouns returns a copy of the noun table.
func (ix *Index) Nouns() []model.Noun {
	if ix == nil {
		return nil
	}
	return append([]model.Noun(nil), ix.nouns...)
}

// Records returns every melted record. Callers must not modify the slice.
func (ix *Index) Records() []model.WordRecord {
	if ix == nil {
		return nil
	}
	return ix.records
}

// Ending returns the records carrying the given ending. Callers must not
// modify the slice.
func (ix *Index) Ending(ending string) []model.WordRecord {
	if ix == nil {
		return nil
	}
	return ix.byEnding[ending]
}

// Select returns the records of all given endings.
func (ix *Index) Select(endings []string) []model.WordRecord {
	if ix == nil {
		return nil
	}
	var out []model.WordRecord
	seen := map[string]struct{}{}
	for _, e := range endings {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, ix.byEnding[e]...)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
