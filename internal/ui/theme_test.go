package ui

import (
	"testing"

	"github.com/five82/queuecall/internal/turn"
)

func TestCategoryColor(t *testing.T) {
	th := GetTheme("Nightfox")

	if got := th.CategoryColor(turn.CategoryActiveCall); got != th.CategoryColors[turn.CategoryActiveCall] {
		t.Fatalf("CategoryColor(active-call) = %q, want %q", got, th.CategoryColors[turn.CategoryActiveCall])
	}
	if got := th.CategoryColor(turn.Category("unknown")); got != th.Muted {
		t.Fatalf("CategoryColor(unknown) = %q, want %q", got, th.Muted)
	}
}

func TestEveryThemeColoursEveryCategory(t *testing.T) {
	categories := []turn.Category{turn.CategoryPending, turn.CategoryActiveCall, turn.CategoryTerminal}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, c := range categories {
			if th.CategoryColors[c] == "" {
				t.Fatalf("theme %s has no colour for %s", name, c)
			}
		}
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q, want Kanagawa", got)
	}
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(nope).Name = %q, want Nightfox", got)
	}
}
