package habit

import (
	"context"
	"fmt"
	"time"

	"github.com/focusaint/focusaint/internal/day"
	"github.com/focusaint/focusaint/internal/models"
)

const defaultHistoryDays = 30

// Start begins a timed session for today. At most one active session may
// exist per user per calendar day.
func (s *Service) Start(ctx context.Context, userID uint) (*models.HabitSession, error) {
	now := s.now()
	today := day.Of(now)

	existing, err := s.sessions.ActiveOn(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}
	if existing != nil {
		return nil, ErrSessionActive
	}

	sess := &models.HabitSession{
		UserID:      userID,
		StartTime:   now,
		SessionDate: today.Time(),
		Status:      models.SessionStatusActive,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// End completes a session. Duration is whole minutes between now and the
// start time, floored, and clamped to zero when the start is in the future
// (clock skew). After the session write the streak engine runs, then the
// user's cumulative counter is bumped. A completed session is immutable:
// ending it again is rejected so the duration and counters cannot be
// rewritten.
func (s *Service) End(ctx context.Context, userID, sessionID uint) (*models.HabitSession, error) {
	sess, err := s.sessions.ByID(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.Status != models.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	now := s.now()
	minutes := int(now.Sub(sess.StartTime).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	sess.EndTime = &now
	sess.DurationMinutes = minutes
	sess.Status = models.SessionStatusCompleted
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.afterCompletion(ctx, userID, now, ""); err != nil {
		return nil, err
	}
	return sess, nil
}

// LogDirect records an already-finished session of the given length, dated
// today, with start back-dated by the duration. The mode also becomes the
// user's preferred mode.
func (s *Service) LogDirect(ctx context.Context, userID uint, minutes int, mode string) (*models.HabitSession, error) {
	if minutes < 1 {
		return nil, ErrInvalidDuration
	}

	now := s.now()
	start := now.Add(-time.Duration(minutes) * time.Minute)
	sess := &models.HabitSession{
		UserID:          userID,
		StartTime:       start,
		EndTime:         &now,
		DurationMinutes: minutes,
		SessionDate:     day.Of(now).Time(),
		Status:          models.SessionStatusCompleted,
		Notes:           fmt.Sprintf("%s mode session", mode),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.afterCompletion(ctx, userID, now, mode); err != nil {
		return nil, err
	}
	return sess, nil
}

// afterCompletion runs the shared post-completion side effects: the streak
// engine first, then the user's counter and last-session timestamp. The
// streak record therefore mirrors the counter as it stood at engine time.
func (s *Service) afterCompletion(ctx context.Context, userID uint, completedAt time.Time, mode string) error {
	if err := s.updateStreak(ctx, userID); err != nil {
		return err
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.TotalSessions++
	user.LastSessionAt = &completedAt
	if mode != "" {
		user.ModePreference = mode
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// History returns the user's sessions from the trailing daysBack days,
// newest first. Non-positive daysBack falls back to 30.
func (s *Service) History(ctx context.Context, userID uint, daysBack int) ([]models.HabitSession, error) {
	if daysBack <= 0 {
		daysBack = defaultHistoryDays
	}
	cutoff := s.now().Add(-time.Duration(daysBack) * 24 * time.Hour)

	sessions, err := s.sessions.ListSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
