package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Crypton" {
		t.Fatalf("ThemeNames()[0] = %q, want Crypton", names[0])
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Crypton"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Crypton) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Crypton" {
		t.Fatalf("NextTheme(Slate) = %q, want Crypton", got)
	}
	if got := NextTheme("Unknown"); got != "Crypton" {
		t.Fatalf("NextTheme(Unknown) = %q, want Crypton", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != defaultThemeName {
		t.Fatalf("GetTheme(Unknown).Name = %q, want %s (fallback)", got, defaultThemeName)
	}
}

func TestBadgeColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, value := range []string{"upcoming", "past", "workshop", "ctf", "social", "competition", "certification", "recognition"} {
			if th.BadgeColor(value) == th.Muted && th.BadgeColors[value] != th.Muted {
				t.Fatalf("%s: BadgeColor(%q) fell back to muted", name, value)
			}
		}
		if got := th.BadgeColor(" CTF "); got != th.BadgeColors["ctf"] {
			t.Fatalf("%s: BadgeColor is not case and space insensitive: %q", name, got)
		}
		if got := th.BadgeColor("sponsor"); got != th.Muted {
			t.Fatalf("%s: BadgeColor(sponsor) = %q, want muted %q", name, got, th.Muted)
		}
	}
}

func TestTruncateAndCell(t *testing.T) {
	if got := truncate("  Capture the Flag  ", 10); got != "Capture..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := cell("ctf", 6); got != "ctf   " {
		t.Fatalf("cell = %q", got)
	}
	if got := titleCase("achievements"); got != "Achievements" {
		t.Fatalf("titleCase = %q", got)
	}
	if got := titleCase("blog_posts"); got != "Blog Posts" {
		t.Fatalf("titleCase = %q", got)
	}
	// wide runes take two cells each
	if got := padRight("日本", 6); got != "日本  " {
		t.Fatalf("padRight = %q", got)
	}
}
