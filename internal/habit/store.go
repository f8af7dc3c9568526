package habit

import (
	"context"
	"errors"
	"time"

	"github.com/focusaint/focusaint/internal/day"
	"github.com/focusaint/focusaint/internal/models"
	"gorm.io/gorm"
)

// Stores bundles the GORM-backed store implementations.
type Stores struct {
	Sessions SessionStore
	Streaks  StreakStore
	Users    UserStore
}

// NewStores builds the Postgres-backed stores over a shared GORM handle.
func NewStores(db *gorm.DB) Stores {
	return Stores{
		Sessions: &gormSessionStore{db: db},
		Streaks:  &gormStreakStore{db: db},
		Users:    &gormUserStore{db: db},
	}
}

type gormSessionStore struct {
	db *gorm.DB
}

func (s *gormSessionStore) Create(ctx context.Context, sess *models.HabitSession) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *gormSessionStore) Save(ctx context.Context, sess *models.HabitSession) error {
	return s.db.WithContext(ctx).Save(sess).Error
}

func (s *gormSessionStore) ByID(ctx context.Context, userID, sessionID uint) (*models.HabitSession, error) {
	var sess models.HabitSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *gormSessionStore) ActiveOn(ctx context.Context, userID uint, d day.Day) (*models.HabitSession, error) {
	var sess models.HabitSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_date >= ? AND session_date < ? AND status = ?",
			userID, d.Time(), d.AddDays(1).Time(), models.SessionStatusActive).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *gormSessionStore) CompletedOn(ctx context.Context, userID uint, d day.Day) (bool, error) {
	count, err := s.CompletedCountOn(ctx, userID, d)
	return count > 0, err
}

func (s *gormSessionStore) CompletedCountOn(ctx context.Context, userID uint, d day.Day) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.HabitSession{}).
		Where("user_id = ? AND session_date >= ? AND session_date < ? AND status = ?",
			userID, d.Time(), d.AddDays(1).Time(), models.SessionStatusCompleted).
		Count(&count).Error
	return int(count), err
}

func (s *gormSessionStore) CompletedCountSince(ctx context.Context, userID uint, cutoff time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.HabitSession{}).
		Where("user_id = ? AND session_date >= ? AND status = ?", userID, cutoff, models.SessionStatusCompleted).
		Count(&count).Error
	return int(count), err
}

func (s *gormSessionStore) CompletedMinutesSince(ctx context.Context, userID uint, cutoff time.Time) (int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.HabitSession{}).
		Where("user_id = ? AND session_date >= ? AND status = ?", userID, cutoff, models.SessionStatusCompleted).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Scan(&total).Error
	return int(total), err
}

func (s *gormSessionStore) ListSince(ctx context.Context, userID uint, cutoff time.Time) ([]models.HabitSession, error) {
	var sessions []models.HabitSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_date >= ?", userID, cutoff).
		Order("session_date DESC, id DESC").
		Find(&sessions).Error
	return sessions, err
}

type gormStreakStore struct {
	db *gorm.DB
}

func (s *gormStreakStore) ByUser(ctx context.Context, userID uint) (*models.StreakRecord, error) {
	var rec models.StreakRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStreakStore) Save(ctx context.Context, rec *models.StreakRecord) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

type gormUserStore struct {
	db *gorm.DB
}

func (s *gormUserStore) ByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) Save(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}
