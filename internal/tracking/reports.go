package tracking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/store"
)

// History entry kinds
const (
	KindSession = "automatic_session"
	KindManual  = "manual_record"
)

// History status labels
const (
	LabelCompleted   = "Completed"
	LabelInterrupted = "Interrupted"
	LabelInProgress  = "In progress"
	LabelManual      = "Manual"
)

// Statistics summarizes a user's study time over a date range
type Statistics struct {
	From                     string  `json:"from"`
	To                       string  `json:"to"`
	DaysInRange              int     `json:"daysInRange"`
	TotalMinutes             int     `json:"totalMinutes"`
	TotalFormatted           string  `json:"totalFormatted"`
	DaysWithStudy            int     `json:"daysWithStudy"`
	EntryCount               int     `json:"entryCount"`
	AveragePerDayMinutes     float64 `json:"averagePerDayMinutes"`
	AveragePerDayFormatted   string  `json:"averagePerDayFormatted"`
	AveragePerEntryMinutes   float64 `json:"averagePerEntryMinutes"`
	AveragePerEntryFormatted string  `json:"averagePerEntryFormatted"`
	MostStudiedSubjectID     *uint   `json:"mostStudiedSubjectId"`
	MostStudiedSubject       string  `json:"mostStudiedSubject"`
	ConsistencyPercent       float64 `json:"consistencyPercent"`
}

// HistoryItem is one session or manual record in the combined history
type HistoryItem struct {
	Kind              string `json:"kind"`
	ID                uint   `json:"id"`
	SubjectID         uint   `json:"subjectId"`
	Subject           string `json:"subject"`
	StudyDate         string `json:"studyDate"`
	DurationMinutes   int    `json:"durationMinutes"`
	DurationFormatted string `json:"durationFormatted"`
	Status            string `json:"status"`
	PauseCount        *int   `json:"pauseCount,omitempty"`
	PauseFormatted    string `json:"pauseFormatted,omitempty"`

	start time.Time
}

// SubjectLabel is the display name of a subject id
func SubjectLabel(id uint) string {
	return fmt.Sprintf("Subject %d", id)
}

// Statistics aggregates completed sessions and manual records in [From, To]
func (s *Service) Statistics(ctx context.Context, q StatisticsQuery) (*Statistics, error) {
	from, to, err := q.validate(s.limits)
	if err != nil {
		return nil, s.reject(err, "user_id", q.UserID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.store.ListSessionsByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	records, err := s.store.ListManualRecordsByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing manual records: %w", err)
	}

	inRange := func(date string) bool { return date >= q.From && date <= q.To }
	matches := func(subjectID uint) bool { return q.SubjectID == nil || *q.SubjectID == subjectID }

	total, entries := 0, 0
	days := make(map[string]struct{})
	perSubject := make(map[uint]int)

	for _, sess := range sessions {
		if sess.Status != models.StatusCompleted || !matches(sess.SubjectID) {
			continue
		}
		date := parser.DateOf(sess.StartedAt, s.loc)
		if !inRange(date) {
			continue
		}
		minutes := 0
		if sess.TotalDurationMinutes != nil {
			minutes = *sess.TotalDurationMinutes
		}
		total += minutes
		entries++
		days[date] = struct{}{}
		perSubject[sess.SubjectID] += minutes
	}

	for _, rec := range records {
		if !matches(rec.SubjectID) || !inRange(rec.StudyDate) {
			continue
		}
		total += rec.DurationMinutes
		entries++
		days[rec.StudyDate] = struct{}{}
		perSubject[rec.SubjectID] += rec.DurationMinutes
	}

	daysInRange := int(to.Sub(from)/(24*time.Hour)) + 1

	stats := &Statistics{
		From:               q.From,
		To:                 q.To,
		DaysInRange:        daysInRange,
		TotalMinutes:       total,
		TotalFormatted:     parser.FormatMinutes(total),
		DaysWithStudy:      len(days),
		EntryCount:         entries,
		MostStudiedSubject: "N/A",
	}

	perDay := float64(total) / float64(daysInRange)
	stats.AveragePerDayMinutes = round2(perDay)
	stats.AveragePerDayFormatted = formatAverage(perDay)
	stats.ConsistencyPercent = round2(float64(len(days)) / float64(daysInRange) * 100)

	if entries > 0 {
		perEntry := float64(total) / float64(entries)
		stats.AveragePerEntryMinutes = round2(perEntry)
		stats.AveragePerEntryFormatted = formatAverage(perEntry)
	} else {
		stats.AveragePerEntryFormatted = parser.FormatMinutes(0)
	}

	if id, ok := mostStudied(perSubject); ok {
		stats.MostStudiedSubjectID = &id
		stats.MostStudiedSubject = SubjectLabel(id)
	}

	return stats, nil
}

// History lists sessions of any status and manual records, newest date first
func (s *Service) History(ctx context.Context, q HistoryQuery) ([]HistoryItem, error) {
	if err := q.validate(); err != nil {
		return nil, s.reject(err, "user_id", q.UserID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.store.ListSessionsByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	records, err := s.store.ListManualRecordsByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing manual records: %w", err)
	}

	keep := func(subjectID uint, date string) bool {
		if q.SubjectID != nil && *q.SubjectID != subjectID {
			return false
		}
		if q.From != "" && date < q.From {
			return false
		}
		if q.To != "" && date > q.To {
			return false
		}
		return true
	}

	items := make([]HistoryItem, 0, len(sessions)+len(records))

	for _, sess := range sessions {
		date := parser.DateOf(sess.StartedAt, s.loc)
		if !keep(sess.SubjectID, date) {
			continue
		}

		pauses, err := s.store.ListPausesBySession(ctx, sess.ID)
		if err != nil {
			return nil, fmt.Errorf("listing pauses of session %d: %w", sess.ID, err)
		}
		minutes := 0
		if sess.TotalDurationMinutes != nil {
			minutes = *sess.TotalDurationMinutes
		}
		pauseCount := len(pauses)

		items = append(items, HistoryItem{
			Kind:              KindSession,
			ID:                sess.ID,
			SubjectID:         sess.SubjectID,
			Subject:           SubjectLabel(sess.SubjectID),
			StudyDate:         date,
			DurationMinutes:   minutes,
			DurationFormatted: parser.FormatMinutes(minutes),
			Status:            statusLabel(sess.Status),
			PauseCount:        &pauseCount,
			PauseFormatted:    parser.FormatMinutes(store.PauseMinutes(pauses)),
			start:             sess.StartedAt,
		})
	}

	for _, rec := range records {
		if !keep(rec.SubjectID, rec.StudyDate) {
			continue
		}
		start, err := parser.ParseDateTime(rec.StudyDate, rec.StartTime, s.loc)
		if err != nil {
			return nil, fmt.Errorf("manual record %d: %w", rec.ID, err)
		}

		items = append(items, HistoryItem{
			Kind:              KindManual,
			ID:                rec.ID,
			SubjectID:         rec.SubjectID,
			Subject:           SubjectLabel(rec.SubjectID),
			StudyDate:         rec.StudyDate,
			DurationMinutes:   rec.DurationMinutes,
			DurationFormatted: parser.FormatMinutes(rec.DurationMinutes),
			Status:            LabelManual,
			start:             start,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].StudyDate != items[j].StudyDate {
			return items[i].StudyDate > items[j].StudyDate
		}
		return items[i].start.After(items[j].start)
	})

	return items, nil
}

func statusLabel(status models.SessionStatus) string {
	switch status {
	case models.StatusCompleted:
		return LabelCompleted
	case models.StatusInterrupted:
		return LabelInterrupted
	default:
		return LabelInProgress
	}
}

// mostStudied picks the subject with the most minutes, lowest id on ties
func mostStudied(perSubject map[uint]int) (uint, bool) {
	var best uint
	bestMinutes, found := -1, false
	for id, minutes := range perSubject {
		if minutes > bestMinutes || (minutes == bestMinutes && id < best) {
			best, bestMinutes, found = id, minutes, true
		}
	}
	return best, found
}

// formatAverage renders fractional minutes as HH:MM rounded to the nearest minute
func formatAverage(minutes float64) string {
	return parser.FormatMinutes(int(math.Round(minutes)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
