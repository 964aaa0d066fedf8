package tracking

import "time"

// Limits are the configurable business bounds of time tracking
type Limits struct {
	MinSessionMinutes int // shortest session Finish accepts
	MaxSessionMinutes int // longest manual record
	MinManualMinutes  int // shortest manual record
	MaxPauseMinutes   int // a longer pause interrupts the session on Resume
	DailyCapMinutes   int // per user and date

	ManualEditWindow  time.Duration // measured from a record's creation
	SessionEditWindow time.Duration // measured from a session's start

	MaxStatisticsSpanDays int
	ManualLookbackYears   int
	MaxDescriptionLength  int
}

// DefaultLimits returns the standard limits
func DefaultLimits() Limits {
	return Limits{
		MinSessionMinutes: 1,
		MaxSessionMinutes: 720,
		MinManualMinutes:  15,
		MaxPauseMinutes:   1440,
		DailyCapMinutes:   12 * 60,

		ManualEditWindow:  7 * 24 * time.Hour,
		SessionEditWindow: 24 * time.Hour,

		MaxStatisticsSpanDays: 730,
		ManualLookbackYears:   1,
		MaxDescriptionLength:  500,
	}
}
