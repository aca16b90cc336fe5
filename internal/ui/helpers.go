package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func visibleWidth(s string) int {
	return lipgloss.Width(s)
}

// formatTime renders timestamps the way the feed shows them: relative
// for the last day, date otherwise.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return t.Format("15:04")
	case age < 24*time.Hour:
		return t.Format("today 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
