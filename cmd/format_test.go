package cmd

import (
	"testing"

	"github.com/fatih/color"
)

func TestListingSummary(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	if got, want := listingSummary(2, 10), "Showing 2 of 10 controls"; got != want {
		t.Errorf("listingSummary() = %q, want %q", got, want)
	}
	if got, want := listingSummary(0, 0), "Showing 0 of 0 controls"; got != want {
		t.Errorf("listingSummary() = %q, want %q", got, want)
	}
}

func TestFormatLogLevel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []struct {
		level string
		want  string
	}{
		{"info", "inf"},
		{"warn", "wrn"},
		{"error", "err"},
		{"debug", "dbg"},
		{"trace", "trace"},
	}
	for _, tt := range tests {
		if got := formatLogLevel(tt.level); got != tt.want {
			t.Errorf("formatLogLevel(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
