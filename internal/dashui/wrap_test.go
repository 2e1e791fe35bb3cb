package dashui

import "testing"

func TestBuildChipTokens(t *testing.T) {
	tokens := buildChipTokens([]string{"yte", "bote"}, 1, "yte", true)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].s != chipSelectedStyle.Render("[yte]") {
		t.Fatalf("expected selected style for first chip")
	}
	if !tokens[1].isSpace || tokens[1].width != 1 {
		t.Fatalf("expected a space token between chips")
	}
	if tokens[2].s != chipCursorStyle.Render("[bote]") || tokens[2].width != 6 {
		t.Fatalf("expected cursor style for second chip, got %+v", tokens[2])
	}
}

func TestWrapStyledTokens(t *testing.T) {
	tokens := buildChipTokens([]string{"yte", "bote"}, 0, "", false)

	got := wrapStyledTokens(tokens, 20)
	want := chipStyle.Render("[yte]") + " " + chipStyle.Render("[bote]")
	if got != want {
		t.Fatalf("expected single line, got %q", got)
	}

	got = wrapStyledTokens(tokens, 8)
	want = chipStyle.Render("[yte]") + "\n" + chipStyle.Render("[bote]")
	if got != want {
		t.Fatalf("expected wrapped chips, got %q", got)
	}
}

func TestWrapStyledTokensLongChip(t *testing.T) {
	tokens := buildChipTokens([]string{"verylong"}, -1, "", false)
	got := wrapStyledTokens(tokens, 4)
	if got != chipStyle.Render("[verylong]") {
		t.Fatalf("expected the long chip on its own line, got %q", got)
	}
}
