package cli

import (
	"testing"
	"time"
)

func TestFormatHours(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0h 00m"},
		{59, "0h 00m"},
		{900, "0h 15m"},
		{28800, "8h 00m"},
		{37230, "10h 20m"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.seconds); got != tt.want {
			t.Errorf("formatHours(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock(time.Hour + 2*time.Minute + 3*time.Second + 900*time.Millisecond); got != "01:02:03" {
		t.Errorf("formatClock = %q, want 01:02:03", got)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-01-10")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}

	today, _ := parseDate("today")
	yesterday, _ := parseDate("Yesterday")
	if d := today.Sub(yesterday); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("today - yesterday = %v", d)
	}

	if _, err := parseDate("10/01/2024"); err == nil {
		t.Error("parseDate accepted 10/01/2024")
	}
}

func TestAtClock(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local)
	got, err := atClock(day, "17:30")
	if err != nil {
		t.Fatalf("atClock: %v", err)
	}
	if want := time.Date(2024, 1, 10, 17, 30, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("atClock = %v, want %v", got, want)
	}
	if _, err := atClock(day, "25:00"); err == nil {
		t.Error("atClock accepted 25:00")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Website Redesign", 8); got != "Website…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Café", 4); got != "Café" {
		t.Errorf("truncate = %q", got)
	}
}
