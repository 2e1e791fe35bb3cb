package lexicon

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidWord(t *testing.T) {
	for _, word := range []string{"Sonne", "Geschäft", "Straße", "E-Mail"} {
		if !ValidWord(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "Haus2", "Auto bahn", "-Ende", "Ende-", "don’t"} {
		if ValidWord(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestSuffixes(t *testing.T) {
	got := Suffixes("Geschäft", 4)
	want := []string{"t", "ft", "äft", "häft"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suffixes mismatch (-want +got):\n%s", diff)
	}
	if got := Suffixes("Ei", 4); len(got) != 2 || got[1] != "ei" {
		t.Fatalf("expected short word to stop at its length, got %v", got)
	}
	if got := Suffixes("Bote", 0); len(got) != 4 || got[3] != "bote" {
		t.Fatalf("expected all suffixes for maxLen 0, got %v", got)
	}
}
