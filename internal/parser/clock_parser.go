package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout is the calendar date format used for study dates
	DateLayout = "2006-01-02"
	// ClockLayout is the time-of-day format used for manual records
	ClockLayout = "15:04"
)

var (
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseClock parses an HH:MM time of day and returns minutes since midnight
func ParseClock(input string) (int, error) {
	matches := clockRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid time %q: use HH:MM", input)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	return hours*60 + minutes, nil
}

// IsValidClock checks if a string is an HH:MM time of day
func IsValidClock(input string) bool {
	return clockRegex.MatchString(input)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc
func ParseDate(input string, loc *time.Location) (time.Time, error) {
	if !dateRegex.MatchString(input) {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input)
	}
	if loc == nil {
		loc = time.UTC
	}

	// ParseInLocation rejects impossible days such as 2025-02-30
	date, err := time.ParseInLocation(DateLayout, input, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", input, err)
	}
	return date, nil
}

// IsValidDate checks if a string is a well-formed YYYY-MM-DD date
func IsValidDate(input string) bool {
	_, err := ParseDate(input, time.UTC)
	return err == nil
}

// ParseDateTime combines a study date and an HH:MM clock into an instant in loc
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return AtClock(day, minutes), nil
}

// AtClock returns the wall-clock time minutes after midnight on day's calendar
// date in day's location. On DST change days this differs from adding a duration.
func AtClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}

// DateOf returns the YYYY-MM-DD calendar date of t as seen in loc
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
