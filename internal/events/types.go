package events

import "time"

// Stream name constants
const (
	StreamSessionCompleted = "habit:session_completed"
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// SessionCompleted is published after a session reaches completed state.
// Consumed by the analytics sidecar; the API never reads it back.
type SessionCompleted struct {
	EventID         string    `json:"event_id"`
	UserID          uint      `json:"user_id"`
	SessionID       uint      `json:"session_id"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
}
