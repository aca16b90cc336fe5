package ui

import "testing"

func TestGetTheme(t *testing.T) {
	dracula := GetTheme("Dracula")
	if dracula.Name != "Dracula" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Dracula", dracula.Name)
	}

	nightfox := GetTheme("Nightfox")
	if nightfox.Name != "Nightfox" {
		t.Fatalf("GetTheme(Nightfox).Name = %q, want Nightfox", nightfox.Name)
	}

	unknown := GetTheme("Unknown")
	if unknown.Name != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", unknown.Name)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Nightfox" {
		t.Fatalf("NextTheme(Dracula) = %q, want Nightfox", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("Unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dracula", got)
	}
}

func TestThemeStylesUseAccent(t *testing.T) {
	th := GetTheme("Dracula")
	styles := th.Styles()
	if styles.Title.GetBold() != true {
		t.Fatalf("Title style should be bold")
	}
}
