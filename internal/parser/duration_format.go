package parser

import (
	"fmt"
	"time"
)

// FormatMinutes renders a minute count as HH:MM (hours are not capped at 24)
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinutesBetween returns the whole minutes from start to end, truncated
func MinutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// FormatElapsed formats a duration in a human-readable way
func FormatElapsed(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	} else {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
}
