package models

import (
	"time"

	"gorm.io/gorm"
)

// Session status constants
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAbandoned = "abandoned"
)

// HabitSession represents one focus session. SessionDate is the
// midnight-aligned calendar day the session counts toward; StartTime and
// EndTime carry the actual timestamps. DurationMinutes stays 0 until the
// session ends. A completed session is never modified again.
type HabitSession struct {
	gorm.Model
	UserID          uint      `gorm:"not null;index:idx_habit_sessions_user_date"`
	User            User      `gorm:"constraint:OnDelete:CASCADE;"`
	StartTime       time.Time `gorm:"not null"`
	EndTime         *time.Time
	DurationMinutes int       `gorm:"not null;default:0"`
	SessionDate     time.Time `gorm:"not null;index:idx_habit_sessions_user_date"`
	Status          string    `gorm:"not null;default:'active';index"`
	Notes           string    `gorm:"not null;default:''"`
}
