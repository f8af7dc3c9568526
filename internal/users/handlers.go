package users

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/focusaint/focusaint/internal/habit"
	"github.com/focusaint/focusaint/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// profileView is the user shape returned to the client; it never carries the
// password hash.
type profileView struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	LearningGoal       string `json:"learningGoal"`
	PreferredStudyTime string `json:"preferredStudyTime"`
	ModePreference     string `json:"modePreference"`
	SubscriptionTier   string `json:"subscriptionTier"`
	CurrentStreak      int    `json:"currentStreak"`
	LongestStreak      int    `json:"longestStreak"`
	TotalSessions      int    `json:"totalSessions"`
	LastSessionAt      any    `json:"lastSessionDate"`
}

func viewOf(user *models.User) profileView {
	return profileView{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		LearningGoal:       user.LearningGoal,
		PreferredStudyTime: user.PreferredStudyTime,
		ModePreference:     user.ModePreference,
		SubscriptionTier:   user.SubscriptionTier,
		CurrentStreak:      user.CurrentStreak,
		LongestStreak:      user.LongestStreak,
		TotalSessions:      user.TotalSessions,
		LastSessionAt:      user.LastSessionAt,
	}
}

// ProfileHandler returns the user's profile and streak record
func ProfileHandler(db *gorm.DB, svc *habit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			log.Printf("Get profile error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			return
		}

		info, err := svc.StreakInfo(c.Request.Context(), userID)
		if err != nil {
			log.Printf("Get profile streak error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":   viewOf(&user),
			"streak": info,
		})
	}
}

// UpdateProfileHandler updates name and learning preferences
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req struct {
			Name               string `json:"name"`
			LearningGoal       string `json:"learningGoal"`
			PreferredStudyTime string `json:"preferredStudyTime"`
			ModePreference     string `json:"modePreference"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if name := strings.TrimSpace(req.Name); name != "" {
			updates["name"] = name
		}
		if req.LearningGoal != "" {
			updates["learning_goal"] = req.LearningGoal
		}
		if req.PreferredStudyTime != "" {
			updates["preferred_study_time"] = req.PreferredStudyTime
		}
		if req.ModePreference != "" {
			if req.ModePreference != models.ModeHabit && req.ModePreference != models.ModeDeep {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode preference"})
				return
			}
			updates["mode_preference"] = req.ModePreference
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			log.Printf("Update profile error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				log.Printf("Update profile error: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Profile updated successfully",
			"user":    viewOf(&user),
		})
	}
}

// DashboardHandler returns the user summary, streak record, and the trailing
// week's completed-session count
func DashboardHandler(db *gorm.DB, svc *habit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := c.GetUint("user_id")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			log.Printf("Dashboard error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
			return
		}

		info, err := svc.StreakInfo(ctx, userID)
		if err != nil {
			log.Printf("Dashboard streak error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
			return
		}

		weekly, err := svc.WeeklyStats(ctx, userID)
		if err != nil {
			log.Printf("Dashboard stats error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":           viewOf(&user),
			"streak":         info,
			"weeklySessions": weekly.SessionsThisWeek,
		})
	}
}
