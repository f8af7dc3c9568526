package habit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// noon on a fixed Wednesday; tests derive yesterday/gap days from it
var testNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func completeSession(t *testing.T, f *fixture) {
	t.Helper()
	sess, err := f.svc.LogDirect(context.Background(), f.userID, 30, "habit")
	if err != nil {
		t.Fatalf("LogDirect failed: %v", err)
	}
	if sess.Status != "completed" {
		t.Fatalf("expected completed session, got %s", sess.Status)
	}
}

func TestStreakExtendsAfterYesterday(t *testing.T) {
	f := newFixture(testNow)
	yesterday := testNow.Add(-24 * time.Hour)
	f.setStreak(4, 10, &yesterday)

	completeSession(t, f)

	if got := f.streak().CurrentStreak; got != 5 {
		t.Errorf("expected current streak 5, got %d", got)
	}
	if got := f.streak().LongestStreak; got != 10 {
		t.Errorf("expected longest streak unchanged at 10, got %d", got)
	}
	if got := f.user().CurrentStreak; got != 5 {
		t.Errorf("expected user cache current streak 5, got %d", got)
	}
}

func TestStreakExtendBumpsLongest(t *testing.T) {
	f := newFixture(testNow)
	yesterday := testNow.Add(-24 * time.Hour)
	f.setStreak(7, 7, &yesterday)

	completeSession(t, f)

	if got := f.streak().CurrentStreak; got != 8 {
		t.Errorf("expected current streak 8, got %d", got)
	}
	if got := f.streak().LongestStreak; got != 8 {
		t.Errorf("expected longest streak 8, got %d", got)
	}
}

func TestStreakExtendIgnoresTimeOfDay(t *testing.T) {
	// Yesterday 23:59 against today 00:05 is still consecutive days.
	f := newFixture(time.Date(2024, 3, 13, 0, 5, 0, 0, time.UTC))
	lastActive := time.Date(2024, 3, 12, 23, 59, 0, 0, time.UTC)
	f.setStreak(2, 5, &lastActive)

	completeSession(t, f)

	if got := f.streak().CurrentStreak; got != 3 {
		t.Errorf("expected current streak 3, got %d", got)
	}
}

func TestStreakSameDayNoOp(t *testing.T) {
	f := newFixture(testNow)
	earlierToday := testNow.Add(-3 * time.Hour)
	f.setStreak(5, 9, &earlierToday)

	completeSession(t, f)

	rec := f.streak()
	if rec.CurrentStreak != 5 {
		t.Errorf("expected current streak unchanged at 5, got %d", rec.CurrentStreak)
	}
	if rec.LongestStreak != 9 {
		t.Errorf("expected longest streak unchanged at 9, got %d", rec.LongestStreak)
	}
	runs, err := rec.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no archived runs, got %d", len(runs))
	}
	if rec.LastActiveAt == nil || !rec.LastActiveAt.Equal(testNow) {
		t.Errorf("expected last active moved to now, got %v", rec.LastActiveAt)
	}
}

func TestStreakResetArchivesRun(t *testing.T) {
	f := newFixture(testNow)
	threeDaysAgo := testNow.Add(-3 * 24 * time.Hour)
	f.setStreak(5, 12, &threeDaysAgo)

	completeSession(t, f)

	rec := f.streak()
	if rec.CurrentStreak != 1 {
		t.Errorf("expected current streak reset to 1, got %d", rec.CurrentStreak)
	}
	if rec.LongestStreak != 12 {
		t.Errorf("expected longest streak unchanged at 12, got %d", rec.LongestStreak)
	}

	runs, err := rec.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 archived run, got %d", len(runs))
	}
	if !runs[0].StartDate.Equal(threeDaysAgo) {
		t.Errorf("expected run start %v, got %v", threeDaysAgo, runs[0].StartDate)
	}
	if !runs[0].EndDate.Equal(testNow) {
		t.Errorf("expected run end %v, got %v", testNow, runs[0].EndDate)
	}
	if runs[0].Length != 5 {
		t.Errorf("expected run length 5, got %d", runs[0].Length)
	}
}

func TestStreakFirstEverSession(t *testing.T) {
	f := newFixture(testNow)
	// Fresh record: no last-active day, zero streak.

	completeSession(t, f)

	rec := f.streak()
	if rec.CurrentStreak != 1 {
		t.Errorf("expected current streak 1, got %d", rec.CurrentStreak)
	}
	if rec.LongestStreak != 1 {
		t.Errorf("expected longest streak 1, got %d", rec.LongestStreak)
	}
	runs, err := rec.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no archived runs, got %d", len(runs))
	}
}

func TestStreakResetFromZeroArchivesNothing(t *testing.T) {
	f := newFixture(testNow)
	fourDaysAgo := testNow.Add(-4 * 24 * time.Hour)
	f.setStreak(0, 3, &fourDaysAgo)

	completeSession(t, f)

	rec := f.streak()
	if rec.CurrentStreak != 1 {
		t.Errorf("expected current streak 1, got %d", rec.CurrentStreak)
	}
	runs, err := rec.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected nothing archived for a zero-length streak, got %d runs", len(runs))
	}
}

func TestStreakFutureLastActiveResets(t *testing.T) {
	// A last-active day in the future is neither yesterday nor today, so it
	// falls into the reset branch like any gap.
	f := newFixture(testNow)
	future := testNow.Add(48 * time.Hour)
	f.setStreak(3, 6, &future)

	completeSession(t, f)

	rec := f.streak()
	if rec.CurrentStreak != 1 {
		t.Errorf("expected current streak reset to 1, got %d", rec.CurrentStreak)
	}
	runs, err := rec.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected the closed run archived, got %d", len(runs))
	}
}

func TestLongestStreakNeverDecreases(t *testing.T) {
	f := newFixture(testNow)

	longest := 0
	// Alternate extends and resets over a month of activity.
	for i := 0; i < 30; i++ {
		completeSession(t, f)
		if got := f.streak().LongestStreak; got < longest {
			t.Fatalf("longest streak decreased from %d to %d on day %d", longest, got, i)
		} else {
			longest = got
		}

		// Skip a day every fourth iteration to force resets.
		if i%4 == 3 {
			f.clock.Advance(48 * time.Hour)
		} else {
			f.clock.Advance(24 * time.Hour)
		}
	}

	if f.streak().LongestStreak != 4 {
		t.Errorf("expected longest run of 4 consecutive days, got %d", f.streak().LongestStreak)
	}
}

func TestStreakSecondCompletionSameDayIdempotent(t *testing.T) {
	f := newFixture(testNow)
	yesterday := testNow.Add(-24 * time.Hour)
	f.setStreak(2, 2, &yesterday)

	completeSession(t, f)
	first := f.streak()

	f.clock.Advance(time.Hour)
	completeSession(t, f)
	second := f.streak()

	if second.CurrentStreak != first.CurrentStreak {
		t.Errorf("second completion changed current streak: %d -> %d", first.CurrentStreak, second.CurrentStreak)
	}
	if second.LongestStreak != first.LongestStreak {
		t.Errorf("second completion changed longest streak: %d -> %d", first.LongestStreak, second.LongestStreak)
	}
}

func TestStreakRecordMissingIsError(t *testing.T) {
	f := newFixture(testNow)
	delete(f.streaks.recs, f.userID)

	_, err := f.svc.LogDirect(context.Background(), f.userID, 30, "habit")
	if !errors.Is(err, ErrStreakRecordMissing) {
		t.Errorf("expected ErrStreakRecordMissing, got %v", err)
	}
}

func TestStreakRecordMirrorsCounterAtEngineTime(t *testing.T) {
	// The engine runs before the user counter increments, so the record's
	// total lags the user's by one after each completion.
	f := newFixture(testNow)

	completeSession(t, f)

	if got := f.user().TotalSessions; got != 1 {
		t.Errorf("expected user total 1, got %d", got)
	}
	if got := f.streak().TotalSessions; got != 0 {
		t.Errorf("expected record total 0 (pre-increment mirror), got %d", got)
	}
}
