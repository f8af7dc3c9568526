package habit

import (
	"context"
	"errors"
	"time"

	"github.com/focusaint/focusaint/internal/day"
	"github.com/focusaint/focusaint/internal/models"
)

// Domain errors surfaced to the HTTP layer. Storage failures are wrapped and
// propagated unchanged; nothing here retries.
var (
	ErrSessionActive       = errors.New("session already active today")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotActive    = errors.New("session is not active")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrStreakRecordMissing = errors.New("streak record missing")
)

// Clock supplies the current time. Injected so tests can pin "today".
type Clock func() time.Time

// SessionStore is the durable collection of habit sessions for all users.
// Lookups that find nothing return nil with no error.
type SessionStore interface {
	Create(ctx context.Context, sess *models.HabitSession) error
	Save(ctx context.Context, sess *models.HabitSession) error
	ByID(ctx context.Context, userID, sessionID uint) (*models.HabitSession, error)
	ActiveOn(ctx context.Context, userID uint, d day.Day) (*models.HabitSession, error)
	CompletedOn(ctx context.Context, userID uint, d day.Day) (bool, error)
	CompletedCountOn(ctx context.Context, userID uint, d day.Day) (int, error)
	CompletedCountSince(ctx context.Context, userID uint, cutoff time.Time) (int, error)
	CompletedMinutesSince(ctx context.Context, userID uint, cutoff time.Time) (int, error)
	ListSince(ctx context.Context, userID uint, cutoff time.Time) ([]models.HabitSession, error)
}

// StreakStore persists the per-user streak aggregate.
type StreakStore interface {
	ByUser(ctx context.Context, userID uint) (*models.StreakRecord, error)
	Save(ctx context.Context, rec *models.StreakRecord) error
}

// UserStore reads and writes the user rows carrying the cached streak summary.
type UserStore interface {
	ByID(ctx context.Context, userID uint) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// Service is the session recorder, streak engine and statistics aggregator.
// Each store call is an independent write; the session/streak/user update
// sequence is deliberately not one transaction, so a failure mid-sequence can
// leave a completed session without streak credit. Callers are request
// handlers with no cross-request coordination.
type Service struct {
	sessions SessionStore
	streaks  StreakStore
	users    UserStore
	now      Clock
}

// NewService wires the recorder, streak engine and stats aggregator over the
// given stores. A nil clock defaults to time.Now.
func NewService(sessions SessionStore, streaks StreakStore, users UserStore, now Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		sessions: sessions,
		streaks:  streaks,
		users:    users,
		now:      now,
	}
}
