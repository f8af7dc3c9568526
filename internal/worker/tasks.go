package worker

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskSendOTPEmail      = "email:send_otp"
	TaskSendReminderEmail = "email:send_reminder"
	TaskDispatchReminders = "reminder:dispatch"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// otpEmailPayload is the payload for TaskSendOTPEmail.
type otpEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

// reminderEmailPayload is the payload for TaskSendReminderEmail.
type reminderEmailPayload struct {
	UserID uint `json:"user_id"`
}

// EnqueueSendOTPEmail queues delivery of a verification code. Retention is
// short; the code itself expires in ten minutes, so a stale retry is useless.
func EnqueueSendOTPEmail(email, name, code string) error {
	payload, err := json.Marshal(otpEmailPayload{Email: email, Name: name, Code: code})
	if err != nil {
		return err
	}

	task := asynq.NewTask(
		TaskSendOTPEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(time.Hour),
	)

	_, err = client.Enqueue(task)
	return err
}

// EnqueueSendReminderEmail queues a streak-reminder email for one user.
func EnqueueSendReminderEmail(userID uint) error {
	payload, err := json.Marshal(reminderEmailPayload{UserID: userID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(
		TaskSendReminderEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	)

	_, err = client.Enqueue(task)
	return err
}
