package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StreakRun is one closed run of consecutive-day activity, archived into the
// StreakRecord history when a streak resets. Entries are append-only.
type StreakRun struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Length    int       `json:"length"`
}

// StreakRecord is the canonical per-user streak aggregate, created when the
// user verifies their email. Exactly one exists per user; the streak engine
// treats its absence as a precondition violation, not an empty state.
type StreakRecord struct {
	gorm.Model
	UserID        uint `gorm:"not null;uniqueIndex"`
	User          User `gorm:"constraint:OnDelete:CASCADE;"`
	CurrentStreak int  `gorm:"not null;default:0"`
	LongestStreak int  `gorm:"not null;default:0"`
	TotalSessions int  `gorm:"not null;default:0"`
	LastActiveAt  *time.Time
	History       datatypes.JSON `gorm:"type:jsonb"`
}

// Runs decodes the archived run history, oldest first. A null or empty column
// decodes to an empty slice.
func (r *StreakRecord) Runs() ([]StreakRun, error) {
	if len(r.History) == 0 {
		return []StreakRun{}, nil
	}
	var runs []StreakRun
	if err := json.Unmarshal(r.History, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// AppendRun archives a closed run at the end of the history list.
func (r *StreakRecord) AppendRun(run StreakRun) error {
	runs, err := r.Runs()
	if err != nil {
		return err
	}
	runs = append(runs, run)
	raw, err := json.Marshal(runs)
	if err != nil {
		return err
	}
	r.History = datatypes.JSON(raw)
	return nil
}
