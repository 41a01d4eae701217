package nlp

import (
	"strings"
	"testing"
)

func TestPreprocessNormalizes(t *testing.T) {
	a := NewAnalyzer()
	got := a.Preprocess("  I was   falling...   down?? yes!!! ")
	want := "I was falling. down? yes!"
	if got != want {
		t.Errorf("Preprocess: got %q, want %q", got, want)
	}
}

func TestPreprocessFixesDictationErrors(t *testing.T) {
	a := NewAnalyzer()
	got := a.Preprocess("and then there was flying over the city")
	if !strings.Contains(got, "I was flying") {
		t.Errorf("expected dictation fix, got %q", got)
	}
}

func TestExtractSymbols(t *testing.T) {
	a := NewAnalyzer()
	elems := a.Extract("I was flying over an ocean holding a golden key")

	found := map[string]string{}
	for _, s := range elems.Symbols {
		found[strings.ToLower(s.Symbol)] = s.Category
		if s.Confidence <= 0 || s.Confidence > 1 {
			t.Errorf("symbol %q confidence %f out of range", s.Symbol, s.Confidence)
		}
	}
	for symbol, category := range map[string]string{
		"flying": "flight",
		"ocean":  "water",
		"key":    "objects",
	} {
		if found[symbol] != category {
			t.Errorf("expected symbol %q in category %q, got %q", symbol, category, found[symbol])
		}
	}
}

func TestExtractSymbolsSortedByConfidence(t *testing.T) {
	a := NewAnalyzer()
	elems := a.Extract("flying flying flying over a distant mountain with a dog")
	if len(elems.Symbols) < 2 {
		t.Fatalf("expected at least two symbols, got %d", len(elems.Symbols))
	}
	for i := 1; i < len(elems.Symbols); i++ {
		if elems.Symbols[i].Confidence > elems.Symbols[i-1].Confidence {
			t.Errorf("symbols not sorted by confidence at %d", i)
		}
	}
	if strings.ToLower(elems.Symbols[0].Symbol) != "flying" {
		t.Errorf("expected repeated symbol ranked first, got %q", elems.Symbols[0].Symbol)
	}
}

func TestTone(t *testing.T) {
	a := NewAnalyzer()
	cases := []struct {
		text string
		want string
	}{
		{"I was terrified and anxious in the dark", "anxious"},
		{"I felt happy and excited, truly delighted", "positive"},
		{"a plain walk to the shop", "neutral"},
		{"everything was peaceful and calm and serene", "serene"},
	}
	for _, c := range cases {
		if got := a.Tone(c.text); got != c.want {
			t.Errorf("Tone(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestThemesAndArchetypes(t *testing.T) {
	a := NewAnalyzer()
	elems := a.Extract("I was traveling down a road, fighting a monster, rescuing my friend")

	wantThemes := map[string]bool{"journey": true, "conflict": true}
	for _, th := range elems.Themes {
		delete(wantThemes, th)
	}
	if len(wantThemes) != 0 {
		t.Errorf("missing themes: %v (got %v)", wantThemes, elems.Themes)
	}

	foundHero := false
	for _, ar := range elems.Archetypes {
		if ar == "hero" {
			foundHero = true
		}
	}
	if !foundHero {
		t.Errorf("expected hero archetype, got %v", elems.Archetypes)
	}
}
