package models

import "time"

// ManualRecord is a user-entered block of study time on a single day
type ManualRecord struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;index" json:"userId"`
	SubjectID uint `gorm:"not null" json:"subjectId"`

	StudyDate       string  `gorm:"not null;index;size:10" json:"studyDate"` // YYYY-MM-DD
	StartTime       string  `gorm:"not null;size:5" json:"startTime"`        // HH:MM
	EndTime         string  `gorm:"not null;size:5" json:"endTime"`          // HH:MM
	DurationMinutes int     `gorm:"not null" json:"durationMinutes"`
	Description     *string `json:"description"`

	CreatedAt time.Time  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}
