package habit

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/focusaint/focusaint/internal/events"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the habit endpoints on an authenticated route group.
func RegisterRoutes(rg *gin.RouterGroup, svc *Service, publisher *events.Publisher) {
	rg.POST("/start", StartHandler(svc))
	rg.POST("/:id/end", EndHandler(svc, publisher))
	rg.POST("/session", LogSessionHandler(svc, publisher))
	rg.GET("/history", HistoryHandler(svc))
	rg.GET("/streak", StreakHandler(svc))
	rg.GET("/stats", StatsHandler(svc))
}

// StartHandler begins a timed session for the authenticated user
func StartHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.Start(c.Request.Context(), currentUserID(c))
		if err != nil {
			if errors.Is(err, ErrSessionActive) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Session already active today"})
				return
			}
			log.Printf("Start session error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Habit session started",
			"session": sess,
		})
	}
}

// EndHandler completes a timed session and publishes the completion event
func EndHandler(svc *Service, publisher *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
			return
		}

		userID := currentUserID(c)
		sess, err := svc.End(c.Request.Context(), userID, uint(sessionID))
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			if errors.Is(err, ErrSessionNotActive) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Session already completed"})
				return
			}
			log.Printf("End session error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
			return
		}

		publishCompletion(c, publisher, sess.ID, userID, sess.DurationMinutes)

		c.JSON(http.StatusOK, gin.H{
			"message":  "Session completed",
			"session":  sess,
			"duration": sess.DurationMinutes,
		})
	}
}

// LogSessionHandler records an already-finished session (direct-log flow)
func LogSessionHandler(svc *Service, publisher *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Duration int    `json:"duration"`
			Mode     string `json:"mode"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		userID := currentUserID(c)
		sess, err := svc.LogDirect(c.Request.Context(), userID, req.Duration, req.Mode)
		if err != nil {
			if errors.Is(err, ErrInvalidDuration) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration"})
				return
			}
			log.Printf("Log session error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log session"})
			return
		}

		publishCompletion(c, publisher, sess.ID, userID, sess.DurationMinutes)

		c.JSON(http.StatusCreated, gin.H{
			"message": "Session logged successfully",
			"session": sess,
		})
	}
}

// HistoryHandler lists the user's sessions from the trailing daysBack days
func HistoryHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		daysBack, _ := strconv.Atoi(c.DefaultQuery("daysBack", "30"))

		sessions, err := svc.History(c.Request.Context(), currentUserID(c), daysBack)
		if err != nil {
			log.Printf("History error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sessions": sessions,
			"daysBack": daysBack,
		})
	}
}

// StreakHandler returns the streak summary from the streak record
func StreakHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		info, err := svc.StreakInfo(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrStreakRecordMissing) {
				// Should not happen for a verified user; the record is
				// created at verification.
				log.Printf("Streak record missing for user %d", userID)
				c.JSON(http.StatusNotFound, gin.H{"error": "Streak record not found"})
				return
			}
			log.Printf("Streak error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch streak"})
			return
		}

		c.JSON(http.StatusOK, info)
	}
}

// StatsHandler returns the streak summary plus the weekly aggregates
func StatsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := currentUserID(c)

		info, err := svc.StreakInfo(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrStreakRecordMissing) {
				log.Printf("Streak record missing for user %d", userID)
				c.JSON(http.StatusNotFound, gin.H{"error": "Streak record not found"})
				return
			}
			log.Printf("Stats error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}

		weekly, err := svc.WeeklyStats(ctx, userID)
		if err != nil {
			log.Printf("Stats error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"currentStreak":    info.CurrentStreak,
			"longestStreak":    info.LongestStreak,
			"totalSessions":    info.TotalSessions,
			"lastSessionDate":  info.LastSessionAt,
			"sessionsThisWeek": weekly.SessionsThisWeek,
			"totalDuration":    weekly.TotalHours,
			"weeklyData":       weekly.WeeklyData,
		})
	}
}

// publishCompletion emits the session-completed event. Best-effort: a publish
// failure is logged and the request still succeeds.
func publishCompletion(c *gin.Context, publisher *events.Publisher, sessionID, userID uint, minutes int) {
	if publisher == nil {
		return
	}
	ev := events.SessionCompleted{
		UserID:          userID,
		SessionID:       sessionID,
		DurationMinutes: minutes,
		CompletedAt:     time.Now(),
	}
	if _, err := publisher.PublishSessionCompleted(c.Request.Context(), ev); err != nil {
		log.Printf("Failed to publish session event: %v", err)
	}
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}
