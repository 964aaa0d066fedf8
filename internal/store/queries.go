package store

import (
	"context"
	"fmt"
	"time"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OverlapQuery describes a candidate manual time block
type OverlapQuery struct {
	UserID uint
	Date   string // YYYY-MM-DD
	Start  string // HH:MM
	End    string // HH:MM

	// ExcludeRecordID skips one manual record, for edit-in-place checks. Zero excludes nothing.
	ExcludeRecordID uint

	// Now closes the interval of sessions that are still running.
	Now      time.Time
	Location *time.Location
}

// HasTimeOverlap checks the candidate block against the user's manual records
// on the same date and against live sessions that started on that date.
func HasTimeOverlap(ctx context.Context, s Store, q OverlapQuery) (bool, error) {
	newStart, err := parser.ParseDateTime(q.Date, q.Start, q.Location)
	if err != nil {
		return false, err
	}
	newEnd, err := parser.ParseDateTime(q.Date, q.End, q.Location)
	if err != nil {
		return false, err
	}

	records, err := s.ListManualRecordsByUser(ctx, q.UserID)
	if err != nil {
		return false, fmt.Errorf("list manual records: %w", err)
	}
	for _, rec := range records {
		if rec.StudyDate != q.Date || (q.ExcludeRecordID != 0 && rec.ID == q.ExcludeRecordID) {
			continue
		}
		existingStart, err := parser.ParseDateTime(rec.StudyDate, rec.StartTime, q.Location)
		if err != nil {
			return false, fmt.Errorf("manual record %d: %w", rec.ID, err)
		}
		existingEnd, err := parser.ParseDateTime(rec.StudyDate, rec.EndTime, q.Location)
		if err != nil {
			return false, fmt.Errorf("manual record %d: %w", rec.ID, err)
		}
		if Overlaps(newStart, newEnd, existingStart, existingEnd) {
			return true, nil
		}
	}

	sessions, err := s.ListSessionsByUser(ctx, q.UserID)
	if err != nil {
		return false, fmt.Errorf("list sessions: %w", err)
	}
	for _, sess := range sessions {
		if !sess.Status.Live() || parser.DateOf(sess.StartedAt, q.Location) != q.Date {
			continue
		}
		existingEnd := q.Now
		if sess.EndedAt != nil {
			existingEnd = *sess.EndedAt
		}
		if Overlaps(newStart, newEnd, sess.StartedAt, existingEnd) {
			return true, nil
		}
	}

	return false, nil
}

// TotalStudyMinutesForDate sums manual records and completed sessions of a user on one date
func TotalStudyMinutesForDate(ctx context.Context, s Store, userID uint, date string, loc *time.Location) (int, error) {
	total := 0

	records, err := s.ListManualRecordsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list manual records: %w", err)
	}
	for _, rec := range records {
		if rec.StudyDate == date {
			total += rec.DurationMinutes
		}
	}

	sessions, err := s.ListSessionsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	for _, sess := range sessions {
		if sess.Status != models.StatusCompleted || sess.TotalDurationMinutes == nil {
			continue
		}
		if parser.DateOf(sess.StartedAt, loc) == date {
			total += *sess.TotalDurationMinutes
		}
	}

	return total, nil
}

// PauseMinutes sums the durations of closed pauses
func PauseMinutes(pauses []models.Pause) int {
	total := 0
	for _, p := range pauses {
		if p.DurationMinutes != nil {
			total += *p.DurationMinutes
		}
	}
	return total
}
