package tui

import (
	"fmt"
	"time"
)

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 2 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// formatClock renders d as HH:MM:SS
func formatClock(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// formatHours renders seconds as "3h 05m"
func formatHours(seconds int64) string {
	return fmt.Sprintf("%dh %02dm", seconds/3600, seconds/60%60)
}
