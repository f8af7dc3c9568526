package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/focusaint/focusaint/internal/config"
	"github.com/hibiken/asynq"
)

// StartScheduler creates and starts an Asynq Scheduler that fires the daily
// reminder dispatch. Returns a stop function for graceful shutdown.
func StartScheduler(cfg *config.Config) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		location = time.UTC
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: location,
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	task := asynq.NewTask(
		TaskDispatchReminders,
		nil, // empty payload; the handler queries eligible users itself
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(23*time.Hour), // one dispatch per day even if the scheduler restarts
	)

	entryID, err := scheduler.Register(cfg.ReminderSchedule, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register reminder schedule: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	slog.Info(
		"Scheduler started",
		"schedule", cfg.ReminderSchedule,
		"timezone", cfg.Timezone,
		"entry_id", entryID,
	)

	return func() { scheduler.Shutdown() }, nil
}
