package tracking

import (
	"time"
	"unicode/utf8"

	"github.com/balkashynov/studytrack/internal/parser"
)

// ManualRecordInput is the user-supplied part of a manual record
type ManualRecordInput struct {
	UserID      uint    `json:"userId"`
	SubjectID   uint    `json:"subjectId"`
	StudyDate   string  `json:"studyDate"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Description *string `json:"description"`
}

// Validate checks formats and bounds and returns the block's duration in minutes.
// today is the current calendar date in the service's location.
func (in ManualRecordInput) Validate(l Limits, today time.Time) (int, error) {
	verr := &ValidationError{}
	if in.UserID == 0 {
		verr.add("userId", "must be a positive integer")
	}
	if in.SubjectID == 0 {
		verr.add("subjectId", "must be a positive integer")
	}

	date, dateErr := parser.ParseDate(in.StudyDate, today.Location())
	if dateErr != nil {
		verr.add("studyDate", "must be a valid date in YYYY-MM-DD format")
	} else {
		earliest := today.AddDate(-l.ManualLookbackYears, 0, 0)
		if date.After(today) || date.Before(earliest) {
			verr.add("studyDate", "cannot be in the future or more than %d year(s) ago", l.ManualLookbackYears)
		}
	}

	start, startErr := parser.ParseClock(in.StartTime)
	if startErr != nil {
		verr.add("startTime", "must be in HH:MM format")
	}
	end, endErr := parser.ParseClock(in.EndTime)
	if endErr != nil {
		verr.add("endTime", "must be in HH:MM format")
	}

	duration := end - start
	if startErr == nil && endErr == nil {
		if duration <= 0 {
			verr.add("endTime", "must be after startTime")
		} else if duration < l.MinManualMinutes || duration > l.MaxSessionMinutes {
			verr.add("endTime", "duration must be between %d and %d minutes", l.MinManualMinutes, l.MaxSessionMinutes)
		}
	}

	if in.Description != nil && utf8.RuneCountInString(*in.Description) > l.MaxDescriptionLength {
		verr.add("description", "must be at most %d characters", l.MaxDescriptionLength)
	}

	if err := verr.err(); err != nil {
		return 0, err
	}
	return duration, nil
}

// StatisticsQuery selects the data for Statistics
type StatisticsQuery struct {
	UserID    uint
	From      string
	To        string
	SubjectID *uint
}

func (q StatisticsQuery) validate(l Limits) (from, to time.Time, err error) {
	verr := &ValidationError{}
	if q.UserID == 0 {
		verr.add("userId", "must be a positive integer")
	}
	if q.SubjectID != nil && *q.SubjectID == 0 {
		verr.add("subjectId", "must be a positive integer")
	}

	from, fromErr := parser.ParseDate(q.From, time.UTC)
	if fromErr != nil {
		verr.add("from", "must be a valid date in YYYY-MM-DD format")
	}
	to, toErr := parser.ParseDate(q.To, time.UTC)
	if toErr != nil {
		verr.add("to", "must be a valid date in YYYY-MM-DD format")
	}
	if fromErr == nil && toErr == nil {
		if from.After(to) {
			verr.add("from", "must not be after to")
		} else if to.Sub(from) > time.Duration(l.MaxStatisticsSpanDays)*24*time.Hour {
			verr.add("to", "range cannot exceed %d days", l.MaxStatisticsSpanDays)
		}
	}

	return from, to, verr.err()
}

// HistoryQuery selects the entries for History. Empty bounds are open.
type HistoryQuery struct {
	UserID    uint
	SubjectID *uint
	From      string
	To        string
}

func (q HistoryQuery) validate() error {
	verr := &ValidationError{}
	if q.UserID == 0 {
		verr.add("userId", "must be a positive integer")
	}
	if q.SubjectID != nil && *q.SubjectID == 0 {
		verr.add("subjectId", "must be a positive integer")
	}
	if q.From != "" && !parser.IsValidDate(q.From) {
		verr.add("from", "must be a valid date in YYYY-MM-DD format")
	}
	if q.To != "" && !parser.IsValidDate(q.To) {
		verr.add("to", "must be a valid date in YYYY-MM-DD format")
	}
	return verr.err()
}
