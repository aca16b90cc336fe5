package ui

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Fatalf("truncate(short) = %q, want unchanged", got)
	}
	got := truncate("a very long title that should be cut", 10)
	if len([]rune(got)) != 10 {
		t.Fatalf("truncate length = %d, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncate = %q, want ellipsis suffix", got)
	}
}

func TestTruncateTinyWidth(t *testing.T) {
	// Widths below the minimum are clamped rather than panicking.
	if got := truncate("abcdefgh", 1); got == "" {
		t.Fatalf("truncate tiny width = %q, want non-empty", got)
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(time.Time{}); got != "" {
		t.Fatalf("formatTime(zero) = %q, want empty", got)
	}
	if got := formatTime(time.Now().Add(-10 * time.Second)); got != "just now" {
		t.Fatalf("formatTime(recent) = %q, want just now", got)
	}
	old := time.Date(2020, 3, 14, 9, 26, 0, 0, time.Local)
	if got := formatTime(old); got != "2020-03-14" {
		t.Fatalf("formatTime(old) = %q, want 2020-03-14", got)
	}
}
