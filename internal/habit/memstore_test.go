package habit

import (
	"context"
	"sort"
	"time"

	"github.com/focusaint/focusaint/internal/day"
	"github.com/focusaint/focusaint/internal/models"
)

// In-memory store fakes mirroring the Postgres query semantics, so the
// service can be exercised without a database.

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type memSessions struct {
	seq   uint
	items map[uint]models.HabitSession
}

func newMemSessions() *memSessions {
	return &memSessions{items: make(map[uint]models.HabitSession)}
}

func (m *memSessions) Create(_ context.Context, sess *models.HabitSession) error {
	m.seq++
	sess.ID = m.seq
	m.items[sess.ID] = *sess
	return nil
}

func (m *memSessions) Save(_ context.Context, sess *models.HabitSession) error {
	m.items[sess.ID] = *sess
	return nil
}

func (m *memSessions) ByID(_ context.Context, userID, sessionID uint) (*models.HabitSession, error) {
	sess, ok := m.items[sessionID]
	if !ok || sess.UserID != userID {
		return nil, nil
	}
	out := sess
	return &out, nil
}

func (m *memSessions) ActiveOn(_ context.Context, userID uint, d day.Day) (*models.HabitSession, error) {
	next := d.AddDays(1).Time()
	for _, sess := range m.items {
		if sess.UserID == userID && sess.Status == models.SessionStatusActive &&
			!sess.SessionDate.Before(d.Time()) && sess.SessionDate.Before(next) {
			out := sess
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memSessions) CompletedOn(ctx context.Context, userID uint, d day.Day) (bool, error) {
	count, err := m.CompletedCountOn(ctx, userID, d)
	return count > 0, err
}

func (m *memSessions) CompletedCountOn(_ context.Context, userID uint, d day.Day) (int, error) {
	count := 0
	next := d.AddDays(1).Time()
	for _, sess := range m.items {
		if sess.UserID == userID && sess.Status == models.SessionStatusCompleted &&
			!sess.SessionDate.Before(d.Time()) && sess.SessionDate.Before(next) {
			count++
		}
	}
	return count, nil
}

func (m *memSessions) CompletedCountSince(_ context.Context, userID uint, cutoff time.Time) (int, error) {
	count := 0
	for _, sess := range m.items {
		if sess.UserID == userID && sess.Status == models.SessionStatusCompleted && !sess.SessionDate.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (m *memSessions) CompletedMinutesSince(_ context.Context, userID uint, cutoff time.Time) (int, error) {
	total := 0
	for _, sess := range m.items {
		if sess.UserID == userID && sess.Status == models.SessionStatusCompleted && !sess.SessionDate.Before(cutoff) {
			total += sess.DurationMinutes
		}
	}
	return total, nil
}

func (m *memSessions) ListSince(_ context.Context, userID uint, cutoff time.Time) ([]models.HabitSession, error) {
	var out []models.HabitSession
	for _, sess := range m.items {
		if sess.UserID == userID && !sess.SessionDate.Before(cutoff) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].SessionDate.After(out[j].SessionDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type memStreaks struct {
	recs map[uint]models.StreakRecord // keyed by user ID
}

func newMemStreaks() *memStreaks {
	return &memStreaks{recs: make(map[uint]models.StreakRecord)}
}

func (m *memStreaks) ByUser(_ context.Context, userID uint) (*models.StreakRecord, error) {
	rec, ok := m.recs[userID]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (m *memStreaks) Save(_ context.Context, rec *models.StreakRecord) error {
	m.recs[rec.UserID] = *rec
	return nil
}

type memUsers struct {
	users map[uint]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uint]models.User)}
}

func (m *memUsers) ByID(_ context.Context, userID uint) (*models.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	out := user
	return &out, nil
}

func (m *memUsers) Save(_ context.Context, user *models.User) error {
	m.users[user.ID] = *user
	return nil
}

// fixture bundles a service over fresh fakes with one seeded user and an
// empty streak record.
type fixture struct {
	svc      *Service
	clock    *fakeClock
	sessions *memSessions
	streaks  *memStreaks
	users    *memUsers
	userID   uint
}

func newFixture(start time.Time) *fixture {
	clock := &fakeClock{t: start}
	sessions := newMemSessions()
	streaks := newMemStreaks()
	users := newMemUsers()

	const userID = 1
	user := models.User{EmailVerified: true}
	user.ID = userID
	users.users[userID] = user

	rec := models.StreakRecord{UserID: userID}
	streaks.recs[userID] = rec

	return &fixture{
		svc:      NewService(sessions, streaks, users, clock.Now),
		clock:    clock,
		sessions: sessions,
		streaks:  streaks,
		users:    users,
		userID:   userID,
	}
}

func (f *fixture) user() models.User {
	return f.users.users[f.userID]
}

func (f *fixture) streak() models.StreakRecord {
	return f.streaks.recs[f.userID]
}

func (f *fixture) setStreak(current, longest int, lastActive *time.Time) {
	rec := f.streaks.recs[f.userID]
	rec.CurrentStreak = current
	rec.LongestStreak = longest
	rec.LastActiveAt = lastActive
	f.streaks.recs[f.userID] = rec

	user := f.users.users[f.userID]
	user.CurrentStreak = current
	user.LongestStreak = longest
	f.users.users[f.userID] = user
}
