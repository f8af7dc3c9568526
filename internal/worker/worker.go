package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/focusaint/focusaint/internal/config"
	"github.com/focusaint/focusaint/internal/day"
	"github.com/focusaint/focusaint/internal/mailer"
	"github.com/focusaint/focusaint/internal/models"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, db *gorm.DB, m *mailer.Mailer) error {
	srv, mux, err := newServer(cfg, db, m)
	if err != nil {
		return err
	}
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop
// function. Use this for embedded mode so the caller coordinates shutdown.
func Start(cfg *config.Config, db *gorm.DB, m *mailer.Mailer) (stop func(), err error) {
	srv, mux, err := newServer(cfg, db, m)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, db *gorm.DB, m *mailer.Mailer) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendOTPEmail, handleSendOTPEmail(logger, m))
	mux.HandleFunc(TaskSendReminderEmail, handleSendReminderEmail(logger, db, m))
	mux.HandleFunc(TaskDispatchReminders, handleDispatchReminders(logger, db))

	logger.Info("Worker starting", "concurrency", 5, "redis", cfg.RedisURL)
	return srv, mux, nil
}

// handleSendOTPEmail delivers a verification code via the mailer.
func handleSendOTPEmail(logger *slog.Logger, m *mailer.Mailer) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload otpEmailPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		if err := m.SendOTP(ctx, payload.Email, payload.Name, payload.Code); err != nil {
			logger.Error("OTP email delivery failed", "email", payload.Email, "error", err.Error())
			return fmt.Errorf("failed to send OTP email: %w", err)
		}

		logger.Info("OTP email sent", "email", payload.Email)
		return nil
	}
}

// handleSendReminderEmail delivers one streak reminder. The user is reloaded
// so a session completed between dispatch and delivery suppresses the mail.
func handleSendReminderEmail(logger *slog.Logger, db *gorm.DB, m *mailer.Mailer) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload reminderEmailPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		var user models.User
		if err := db.WithContext(ctx).First(&user, payload.UserID).Error; err != nil {
			logger.Error("Reminder user not found", "user_id", payload.UserID)
			return fmt.Errorf("user not found: %w", asynq.SkipRetry)
		}

		today := day.Of(time.Now())
		var done int64
		err := db.WithContext(ctx).
			Model(&models.HabitSession{}).
			Where("user_id = ? AND session_date >= ? AND session_date < ? AND status = ?",
				user.ID, today.Time(), today.AddDays(1).Time(), models.SessionStatusCompleted).
			Count(&done).Error
		if err != nil {
			return fmt.Errorf("failed to check today's sessions: %w", err)
		}
		if done > 0 {
			logger.Info("Reminder skipped, session already logged", "user_id", user.ID)
			return nil
		}

		if err := m.SendReminder(ctx, user.Email, user.Name, user.CurrentStreak); err != nil {
			logger.Error("Reminder delivery failed", "user_id", user.ID, "error", err.Error())
			return fmt.Errorf("failed to send reminder: %w", err)
		}

		logger.Info("Reminder email sent", "user_id", user.ID)
		return nil
	}
}

// handleDispatchReminders fans out one reminder task per verified user with
// no completed session today.
func handleDispatchReminders(logger *slog.Logger, db *gorm.DB) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		today := day.Of(time.Now())

		var users []models.User
		err := db.WithContext(ctx).
			Where("email_verified = ?", true).
			Where("NOT EXISTS (SELECT 1 FROM habit_sessions s WHERE s.user_id = users.id AND s.session_date >= ? AND s.session_date < ? AND s.status = ?)",
				today.Time(), today.AddDays(1).Time(), models.SessionStatusCompleted).
			Find(&users).Error
		if err != nil {
			return fmt.Errorf("failed to query reminder candidates: %w", err)
		}

		enqueued := 0
		for _, user := range users {
			if err := EnqueueSendReminderEmail(user.ID); err != nil {
				logger.Error("Failed to enqueue reminder", "user_id", user.ID, "error", err.Error())
				continue
			}
			enqueued++
		}

		logger.Info("Reminder dispatch completed", "candidates", len(users), "enqueued", enqueued)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
