package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/derdie/internal/lexicon"
	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/store"
)

// Report is the immutable snapshot every view renders from.
type Report struct {
	Index      *lexicon.Index
	Exceptions model.ExceptionMap
	Nouns      int
	Endings    []model.EndingStats
	KeyEndings []model.KeyEnding
	KeyStats   []model.EndingStats
	Summary    map[model.Gender]model.GenderSummary
	Overall    model.GenderSummary
}

// BuildReport loads the noun and key ending tables and prepares every
// derived table.
func BuildReport(ctx context.Context, st *store.Store, cfg model.DashboardConfig) (Report, error) {
	var nouns []model.Noun
	var keys []model.KeyEnding
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nouns, err = st.ListNouns(gctx)
		if err != nil {
			return fmt.Errorf("failed to load nouns: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		keys, err = st.ListKeyEndings(gctx)
		if err != nil {
			return fmt.Errorf("failed to load key endings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return NewReport(nouns, keys, cfg), nil
}

// NewReport builds a report from nouns. Without stored key endings they are
// selected from the configured endings.
func NewReport(nouns []model.Noun, keys []model.KeyEnding, cfg model.DashboardConfig) Report {
	exceptions := cfg.Exceptions
	if len(exceptions.Order) == 0 {
		exceptions = DefaultExceptions()
	}
	keyIDs := KeyEndingIDs(keys)
	ix := lexicon.NewIndex(nouns, MaxEndingLen(exceptions, keyIDs...))
	if len(keys) == 0 {
		keys = ComputeKeyEndings(ix, exceptions, cfg.KeyCount, cfg.MinKeyAccuracy)
		keyIDs = KeyEndingIDs(keys)
	}

	endings := exceptions.Endings()
	keyStats := Aggregate(ExcludeExceptions(ix.Select(keyIDs), exceptions), keyIDs)
	summary := Summarize(keyStats, keyIDs, ix.NounCount())
	return Report{
		Index:      ix,
		Exceptions: exceptions,
		Nouns:      ix.NounCount(),
		Endings:    Aggregate(ix.Select(endings), endings),
		KeyEndings: keys,
		KeyStats:   keyStats,
		Summary:    summary,
		Overall:    Overall(summary, ix.NounCount()),
	}
}

// ComputeKeyEndings selects the key endings among the configured endings,
// with exception words excluded from every ending's totals.
func ComputeKeyEndings(ix *lexicon.Index, exceptions model.ExceptionMap, keyCount int, minAccuracy float64) []model.KeyEnding {
	endings := exceptions.Endings()
	rows := Aggregate(ExcludeExceptions(ix.Select(endings), exceptions), endings)
	return SelectKeyEndings(rows, ix.NounCount(), keyCount, minAccuracy)
}

// ExceptionStats aggregates the exceptions of one ending.
func (r Report) ExceptionStats(ending string) []model.EndingStats {
	words, ok := r.Exceptions.Get(NormalizeEnding(ending))
	if !ok || len(words) == 0 {
		return nil
	}
	words = NormalizeEndings(words)
	return Aggregate(r.Index.Select(words), words)
}
