package models

import (
	"time"
)

// SessionStatus is the lifecycle state of a study session
type SessionStatus string

const (
	StatusActive      SessionStatus = "active"
	StatusPaused      SessionStatus = "paused"
	StatusCompleted   SessionStatus = "completed"
	StatusInterrupted SessionStatus = "interrupted"
)

// Live reports whether the session is still running (active or paused)
func (s SessionStatus) Live() bool {
	return s == StatusActive || s == StatusPaused
}

// Closed reports whether the session reached a terminal state
func (s SessionStatus) Closed() bool {
	return s == StatusCompleted || s == StatusInterrupted
}

// Interruption reasons
const (
	InterruptionUserStopped = "user_stopped"
	InterruptionTimeout     = "timeout"
	InterruptionSystemError = "system_error"
)

// Edit reasons accepted when correcting a finished session
const (
	EditInterruptionCorrection = "interruption_correction"
	EditTimeAdjustment         = "time_adjustment"
	EditSubjectCorrection      = "subject_correction"
)

// Session represents a live, timer-driven study interval
type Session struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;index" json:"userId"`
	SubjectID uint `gorm:"not null" json:"subjectId"`

	StartedAt time.Time     `gorm:"not null" json:"startedAt"`
	EndedAt   *time.Time    `json:"endedAt"`
	Status    SessionStatus `gorm:"not null;index;default:active" json:"status"`

	// TotalDurationMinutes excludes paused time; set once the session is closed.
	TotalDurationMinutes *int    `json:"totalDurationMinutes"`
	InterruptionReason   *string `json:"interruptionReason"`

	EditReason *string    `json:"editReason,omitempty"`
	EditedAt   *time.Time `json:"editedAt,omitempty"`
}
