package habit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/focusaint/focusaint/internal/models"
)

func TestStartCreatesActiveSession(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if sess.Status != models.SessionStatusActive {
		t.Errorf("expected active status, got %s", sess.Status)
	}
	if !sess.StartTime.Equal(testNow) {
		t.Errorf("expected start %v, got %v", testNow, sess.StartTime)
	}
	wantDate := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	if !sess.SessionDate.Equal(wantDate) {
		t.Errorf("expected midnight-aligned session date %v, got %v", wantDate, sess.SessionDate)
	}
	if sess.DurationMinutes != 0 {
		t.Errorf("expected zero duration on start, got %d", sess.DurationMinutes)
	}
}

func TestStartRejectsSecondActiveSession(t *testing.T) {
	f := newFixture(testNow)

	if _, err := f.svc.Start(context.Background(), f.userID); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	_, err := f.svc.Start(context.Background(), f.userID)
	if !errors.Is(err, ErrSessionActive) {
		t.Errorf("expected ErrSessionActive, got %v", err)
	}
}

func TestStartAllowedAfterCompletion(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.clock.Advance(25 * time.Minute)
	if _, err := f.svc.End(context.Background(), f.userID, sess.ID); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	if _, err := f.svc.Start(context.Background(), f.userID); err != nil {
		t.Errorf("expected a new session after completing the first, got %v", err)
	}
}

func TestEndFloorsDurationToWholeMinutes(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.clock.Advance(27*time.Minute + 18*time.Second)
	ended, err := f.svc.End(context.Background(), f.userID, sess.ID)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}

	if ended.DurationMinutes != 27 {
		t.Errorf("expected duration 27, got %d", ended.DurationMinutes)
	}
	if ended.Status != models.SessionStatusCompleted {
		t.Errorf("expected completed status, got %s", ended.Status)
	}
	if ended.EndTime == nil || !ended.EndTime.Equal(f.clock.Now()) {
		t.Errorf("expected end time %v, got %v", f.clock.Now(), ended.EndTime)
	}
}

func TestEndClampsClockSkewToZero(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Clock jumped backwards: the start is now in the future.
	f.clock.t = f.clock.t.Add(-10 * time.Minute)
	ended, err := f.svc.End(context.Background(), f.userID, sess.ID)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}

	if ended.DurationMinutes != 0 {
		t.Errorf("expected duration clamped to 0, got %d", ended.DurationMinutes)
	}
}

func TestEndRejectsCompletedSession(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.clock.Advance(30 * time.Minute)
	ended, err := f.svc.End(context.Background(), f.userID, sess.ID)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}

	// A completed session is immutable: a later End must not stretch the
	// duration or credit the counters again.
	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.End(context.Background(), f.userID, sess.ID)
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive, got %v", err)
	}

	stored := f.sessions.items[sess.ID]
	if stored.DurationMinutes != 30 {
		t.Errorf("duration rewritten to %d, want 30", stored.DurationMinutes)
	}
	if stored.EndTime == nil || !stored.EndTime.Equal(*ended.EndTime) {
		t.Errorf("end time rewritten to %v, want %v", stored.EndTime, ended.EndTime)
	}
	if got := f.user().TotalSessions; got != 1 {
		t.Errorf("total sessions double-counted: got %d, want 1", got)
	}
}

func TestStartIgnoresFutureDatedSession(t *testing.T) {
	f := newFixture(testNow)

	// An active row dated tomorrow (clock skew artifact) must not block
	// today's start.
	stray := &models.HabitSession{
		UserID:      f.userID,
		StartTime:   testNow.Add(24 * time.Hour),
		SessionDate: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Status:      models.SessionStatusActive,
	}
	if err := f.sessions.Create(context.Background(), stray); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := f.svc.Start(context.Background(), f.userID); err != nil {
		t.Errorf("expected Start to succeed despite future-dated row, got %v", err)
	}
}

func TestEndUnknownSession(t *testing.T) {
	f := newFixture(testNow)

	_, err := f.svc.End(context.Background(), f.userID, 999)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestEndOtherUsersSession(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err = f.svc.End(context.Background(), f.userID+1, sess.ID)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for another user's session, got %v", err)
	}
}

func TestEndUpdatesUserCounters(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.Start(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.clock.Advance(40 * time.Minute)
	if _, err := f.svc.End(context.Background(), f.userID, sess.ID); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	user := f.user()
	if user.TotalSessions != 1 {
		t.Errorf("expected total sessions 1, got %d", user.TotalSessions)
	}
	if user.LastSessionAt == nil || !user.LastSessionAt.Equal(f.clock.Now()) {
		t.Errorf("expected last session at %v, got %v", f.clock.Now(), user.LastSessionAt)
	}
	if user.CurrentStreak != 1 {
		t.Errorf("expected streak credited, got %d", user.CurrentStreak)
	}
}

func TestLogDirectRejectsInvalidDurations(t *testing.T) {
	f := newFixture(testNow)

	for _, minutes := range []int{0, -5} {
		_, err := f.svc.LogDirect(context.Background(), f.userID, minutes, "habit")
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("LogDirect(%d) error = %v, want ErrInvalidDuration", minutes, err)
		}
	}

	if f.user().TotalSessions != 0 {
		t.Errorf("rejected logs must not change counters, total = %d", f.user().TotalSessions)
	}
}

func TestLogDirectBackdatesStart(t *testing.T) {
	f := newFixture(testNow)

	sess, err := f.svc.LogDirect(context.Background(), f.userID, 45, "deep")
	if err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}

	wantStart := testNow.Add(-45 * time.Minute)
	if !sess.StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, sess.StartTime)
	}
	if sess.EndTime == nil || !sess.EndTime.Equal(testNow) {
		t.Errorf("expected end %v, got %v", testNow, sess.EndTime)
	}
	if sess.Status != models.SessionStatusCompleted {
		t.Errorf("expected completed status, got %s", sess.Status)
	}
	if sess.DurationMinutes != 45 {
		t.Errorf("expected duration 45, got %d", sess.DurationMinutes)
	}
	if sess.Notes != "deep mode session" {
		t.Errorf("unexpected notes %q", sess.Notes)
	}
}

func TestLogDirectUpdatesModePreference(t *testing.T) {
	f := newFixture(testNow)

	if _, err := f.svc.LogDirect(context.Background(), f.userID, 30, "deep"); err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}

	if got := f.user().ModePreference; got != "deep" {
		t.Errorf("expected mode preference deep, got %q", got)
	}
}

func TestHistoryWindowAndOrder(t *testing.T) {
	f := newFixture(testNow)

	// One session 40 days back (outside a 30-day window), two inside.
	f.clock.t = testNow.Add(-40 * 24 * time.Hour)
	if _, err := f.svc.LogDirect(context.Background(), f.userID, 20, "habit"); err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}
	f.clock.t = testNow.Add(-5 * 24 * time.Hour)
	if _, err := f.svc.LogDirect(context.Background(), f.userID, 20, "habit"); err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}
	f.clock.t = testNow
	if _, err := f.svc.LogDirect(context.Background(), f.userID, 20, "habit"); err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}

	sessions, err := f.svc.History(context.Background(), f.userID, 30)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions in window, got %d", len(sessions))
	}
	if !sessions[0].SessionDate.After(sessions[1].SessionDate) {
		t.Errorf("expected newest first, got %v then %v", sessions[0].SessionDate, sessions[1].SessionDate)
	}
}

func TestHistoryDefaultsToThirtyDays(t *testing.T) {
	f := newFixture(testNow)

	f.clock.t = testNow.Add(-40 * 24 * time.Hour)
	if _, err := f.svc.LogDirect(context.Background(), f.userID, 20, "habit"); err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}
	f.clock.t = testNow

	sessions, err := f.svc.History(context.Background(), f.userID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected the 40-day-old session outside the default window, got %d", len(sessions))
	}
}
