package habit

import (
	"context"
	"fmt"
	"time"

	"github.com/focusaint/focusaint/internal/day"
	"github.com/focusaint/focusaint/internal/models"
)

// updateStreak decides streak continuation at calendar-day granularity. It
// only acts once a completed session dated today exists, and a second
// completion the same day falls into the no-change branch, so the engine is
// idempotent per day. The streak record must already exist (created at email
// verification); its absence is a precondition violation.
func (s *Service) updateStreak(ctx context.Context, userID uint) error {
	now := s.now()
	today := day.Of(now)
	yesterday := today.AddDays(-1)

	done, err := s.sessions.CompletedOn(ctx, userID, today)
	if err != nil {
		return fmt.Errorf("failed to check today's sessions: %w", err)
	}
	if !done {
		return nil
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	rec, err := s.streaks.ByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up streak record: %w", err)
	}
	if rec == nil {
		return ErrStreakRecordMissing
	}

	var lastActive day.Day
	if rec.LastActiveAt != nil {
		lastActive = day.Of(*rec.LastActiveAt)
	}

	switch {
	case lastActive.IsZero() || lastActive.Equal(yesterday):
		// First ever activity, or consecutive day: extend.
		user.CurrentStreak++
		if user.CurrentStreak > user.LongestStreak {
			user.LongestStreak = user.CurrentStreak
		}
	case !lastActive.Equal(today):
		// Anything that is neither yesterday nor today resets the streak.
		// That includes future lastActive values; they are not treated
		// specially.
		if rec.CurrentStreak > 0 {
			run := models.StreakRun{
				StartDate: *rec.LastActiveAt,
				EndDate:   now,
				Length:    rec.CurrentStreak,
			}
			if err := rec.AppendRun(run); err != nil {
				return fmt.Errorf("failed to archive streak run: %w", err)
			}
		}
		user.CurrentStreak = 1
	default:
		// Already credited today.
	}

	rec.CurrentStreak = user.CurrentStreak
	rec.LongestStreak = user.LongestStreak
	rec.LastActiveAt = &now
	rec.TotalSessions = user.TotalSessions

	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user streak fields: %w", err)
	}
	if err := s.streaks.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save streak record: %w", err)
	}
	return nil
}

// StreakInfo is the streak summary served to the dashboard.
type StreakInfo struct {
	CurrentStreak int                `json:"currentStreak"`
	LongestStreak int                `json:"longestStreak"`
	TotalSessions int                `json:"totalSessions"`
	LastSessionAt *time.Time         `json:"lastSessionDate"`
	History       []models.StreakRun `json:"streakHistory"`
}

// StreakInfo reads the user's streak summary. Streak numbers and history come
// from the streak record, the single source of truth; the cached copies on
// the user row are for display writes only and are never read back here.
func (s *Service) StreakInfo(ctx context.Context, userID uint) (*StreakInfo, error) {
	rec, err := s.streaks.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up streak record: %w", err)
	}
	if rec == nil {
		return nil, ErrStreakRecordMissing
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	runs, err := rec.Runs()
	if err != nil {
		return nil, fmt.Errorf("failed to decode streak history: %w", err)
	}

	return &StreakInfo{
		CurrentStreak: rec.CurrentStreak,
		LongestStreak: rec.LongestStreak,
		TotalSessions: user.TotalSessions,
		LastSessionAt: user.LastSessionAt,
		History:       runs,
	}, nil
}
