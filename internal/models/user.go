package models

import (
	"time"

	"gorm.io/gorm"
)

// Learning mode constants
const (
	ModeHabit = "habit"
	ModeDeep  = "deep"
)

// Subscription tier constants
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// User represents an application user with learning preferences and a cached
// streak summary. CurrentStreak, LongestStreak, TotalSessions and
// LastSessionAt are denormalized copies of the canonical StreakRecord values,
// kept in sync on every completed session.
type User struct {
	gorm.Model
	Email              string `gorm:"uniqueIndex:idx_users_email_not_deleted,where:deleted_at IS NULL;not null"`
	Name               string `gorm:"not null;default:''"`
	PasswordHash       string `gorm:"type:text"` // empty for OAuth-only accounts
	LearningGoal       string `gorm:"not null;default:'casual_learner'"`
	PreferredStudyTime string `gorm:"not null;default:'09:00'"`
	ModePreference     string `gorm:"not null;default:'habit'"` // enum: 'habit' or 'deep'
	SubscriptionTier   string `gorm:"not null;default:'free'"`  // enum: 'free' or 'premium'
	EmailVerified      bool   `gorm:"not null;default:false"`

	CurrentStreak int `gorm:"not null;default:0"`
	LongestStreak int `gorm:"not null;default:0"`
	TotalSessions int `gorm:"not null;default:0"`
	LastSessionAt *time.Time

	// Associations
	AuthIdentities []AuthIdentity `gorm:"constraint:OnDelete:CASCADE;"`
	HabitSessions  []HabitSession `gorm:"constraint:OnDelete:CASCADE;"`
}
