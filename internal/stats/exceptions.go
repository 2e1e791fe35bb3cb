package stats

import (
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/derdie/internal/model"
)

// curatedEndings lists the dashboard endings with their hand-picked exceptions.
var curatedEndings = []struct {
	ending     string
	exceptions []string
}{
	{"e", []string{"yte", "bote", "see"}},
	{"ng", []string{"ang", "ing"}},
	{"iel", nil},
	{"in", []string{"ein"}},
	{"er", []string{"tier", "pier"}},
	{"mus", nil},
	{"haus", nil},
	{"it", nil},
	{"ft", []string{"äft"}},
	{"hen", nil},
	{"f", []string{"hiff"}},
	{"um", []string{"aum"}},
	{"rm", []string{"orm"}},
	{"em", nil},
	{"ik", nil},
	{"uch", []string{"buch", "tuch"}},
	{"tz", []string{"etz"}},
	{"ei", []string{"hrei", "brei"}},
	{"all", nil},
	{"eis", []string{"leis"}},
	{"ld", []string{"ald", "uld"}},
}

// DefaultExceptions returns the curated ending to exception mapping.
func DefaultExceptions() model.ExceptionMap {
	m := model.ExceptionMap{Words: make(map[string][]string, len(curatedEndings))}
	for _, c := range curatedEndings {
		m.Order = append(m.Order, c.ending)
		m.Words[c.ending] = append([]string{}, c.exceptions...)
	}
	return m
}

// BuildExceptionMap attaches every exception to each ending it ends with.
// An exception shorter than the ending never matches, so an ending cannot
// list itself through a shorter string. Matching ignores case: endings and
// exceptions are stored in lower case.
func BuildExceptionMap(endings, exceptions []string) model.ExceptionMap {
	order := NormalizeEndings(endings)
	m := model.ExceptionMap{Order: order, Words: make(map[string][]string, len(order))}
	for _, ending := range order {
		list := []string{}
		seen := map[string]struct{}{}
		for _, raw := range exceptions {
			exception := NormalizeEnding(raw)
			if exception == "" || !matchesEnding(exception, ending) {
				continue
			}
			if _, ok := seen[exception]; ok {
				continue
			}
			seen[exception] = struct{}{}
			list = append(list, exception)
		}
		m.Words[ending] = list
	}
	return m
}

// ExceptionMapFrom validates a configured mapping. Pairs that break the suffix
// rule are returned separately.
func ExceptionMapFrom(order []string, words map[string][]string) (model.ExceptionMap, []string) {
	m := model.ExceptionMap{Words: map[string][]string{}}
	var rejected []string
	for _, raw := range order {
		ending := NormalizeEnding(raw)
		if ending == "" || m.Has(ending) {
			continue
		}
		var wanted []string
		for _, w := range words[raw] {
			wanted = append(wanted, NormalizeEnding(w))
		}
		built := BuildExceptionMap([]string{ending}, wanted)
		list := built.Words[ending]
		for _, w := range wanted {
			if !containsString(list, w) {
				rejected = append(rejected, ending+":"+w)
			}
		}
		m.Order = append(m.Order, ending)
		m.Words[ending] = list
	}
	return m, rejected
}

// ExcludeExceptions drops records whose word ends with one of the exceptions
// listed for the record's ending.
func ExcludeExceptions(records []model.WordRecord, exceptions model.ExceptionMap) []model.WordRecord {
	out := make([]model.WordRecord, 0, len(records))
	for _, rec := range records {
		list := exceptions.Words[NormalizeEnding(rec.Ending)]
		if len(list) > 0 && isException(rec.Word, list) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// MaxEndingLen returns the longest ending or exception in runes.
func MaxEndingLen(exceptions model.ExceptionMap, extra ...string) int {
	longest := 0
	check := func(s string) {
		if n := utf8.RuneCountInString(s); n > longest {
			longest = n
		}
	}
	for _, ending := range exceptions.Order {
		check(ending)
		for _, w := range exceptions.Words[ending] {
			check(w)
		}
	}
	for _, s := range extra {
		check(s)
	}
	return longest
}

func matchesEnding(exception, ending string) bool {
	if utf8.RuneCountInString(exception) < utf8.RuneCountInString(ending) {
		return false
	}
	return strings.HasSuffix(exception, ending)
}

func isException(word string, list []string) bool {
	lower := strings.ToLower(word)
	for _, exception := range list {
		if strings.HasSuffix(lower, exception) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
