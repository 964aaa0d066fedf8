package models

import "time"

// Pause is an interval inside a session that does not count toward its duration
type Pause struct {
	ID        uint `gorm:"primarykey" json:"id"`
	SessionID uint `gorm:"not null;index" json:"sessionId"`

	StartedAt       time.Time  `gorm:"not null" json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt"`
	DurationMinutes *int       `json:"durationMinutes"`
}

// Open reports whether the pause has not been closed yet
func (p Pause) Open() bool {
	return p.EndedAt == nil
}
