package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParseStudyDate resolves a study date given on the command line.
// Supported formats:
// - YYYY-MM-DD (e.g., "2025-01-15")
// - "today", "yesterday"
// - natural language understood by when (e.g., "last monday", "3 days ago")
func ParseStudyDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("date is required")
	}

	if IsValidDate(input) {
		return input, nil
	}

	switch strings.ToLower(input) {
	case "today":
		return now.Format(DateLayout), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(DateLayout), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(input, now)
	if err != nil || result == nil {
		return "", fmt.Errorf("invalid date %q. Use: YYYY-MM-DD, today, yesterday or e.g. \"last monday\"", input)
	}

	return result.Time.In(now.Location()).Format(DateLayout), nil
}

// ParseInstant parses an end timestamp for session corrections.
// Accepts RFC3339, "YYYY-MM-DD HH:MM", or a bare HH:MM which is placed on
// the calendar day of ref.
func ParseInstant(input string, ref time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, input, ref.Location()); err == nil {
		return t, nil
	}

	if IsValidClock(input) {
		minutes, _ := ParseClock(input)
		return AtClock(ref, minutes), nil
	}

	return time.Time{}, fmt.Errorf("invalid time %q. Use: HH:MM, \"YYYY-MM-DD HH:MM\" or RFC3339", input)
}
