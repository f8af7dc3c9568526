package database

import (
	"log"
	"time"

	"github.com/focusaint/focusaint/internal/crypto"
	"github.com/focusaint/focusaint/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	// Check if seed data already exists
	var existingUser models.User
	result := db.Where("email = ?", "dev@focusaint.local").First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	hash, err := crypto.HashPassword("DevPassword1")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)

	user := models.User{
		Email:              "dev@focusaint.local",
		Name:               "Dev User",
		PasswordHash:       hash,
		LearningGoal:       "Learn Spanish",
		PreferredStudyTime: "evening",
		ModePreference:     models.ModeHabit,
		SubscriptionTier:   models.TierFree,
		EmailVerified:      true,
		CurrentStreak:      3,
		LongestStreak:      5,
		TotalSessions:      12,
		LastSessionAt:      &yesterday,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	streak := models.StreakRecord{
		UserID:        user.ID,
		CurrentStreak: 3,
		LongestStreak: 5,
		TotalSessions: 12,
		LastActiveAt:  &yesterday,
		History: datatypes.JSON([]byte(`[
			{"startDate":"2024-02-01T00:00:00Z","endDate":"2024-02-06T00:00:00Z","length":5}
		]`)),
	}
	if err := db.Create(&streak).Error; err != nil {
		return err
	}

	// A few completed sessions over the last three days so the weekly chart
	// has something to show.
	for i := 2; i >= 0; i-- {
		start := now.AddDate(0, 0, -i).Add(-25 * time.Minute)
		end := start.Add(25 * time.Minute)
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		session := models.HabitSession{
			UserID:          user.ID,
			StartTime:       start,
			EndTime:         &end,
			DurationMinutes: 25,
			SessionDate:     day,
			Status:          models.SessionStatusCompleted,
			Notes:           "habit mode session",
		}
		if err := db.Create(&session).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded dev data: 1 user, 1 streak record, 3 sessions")
	return nil
}
