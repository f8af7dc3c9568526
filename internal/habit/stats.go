package habit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/focusaint/focusaint/internal/day"
)

// DaySessions is one element of the weekly chart series.
type DaySessions struct {
	Day      string `json:"day"` // weekday abbreviation, e.g. "Mon"
	Sessions int    `json:"sessions"`
}

// WeeklyStats aggregates completed sessions over the trailing seven days.
type WeeklyStats struct {
	SessionsThisWeek int           `json:"sessionsThisWeek"`
	TotalHours       int           `json:"totalDuration"` // whole hours, rounded
	WeeklyData       []DaySessions `json:"weeklyData"`    // oldest day first
}

// WeeklyStats computes the dashboard aggregates. The "last 7 days" window is
// exactly now minus 7*24h, so a midnight day bucket seven days back falls
// outside it; today's bucket is always inside. Pure read.
func (s *Service) WeeklyStats(ctx context.Context, userID uint) (*WeeklyStats, error) {
	now := s.now()
	cutoff := now.Add(-7 * 24 * time.Hour)

	count, err := s.sessions.CompletedCountSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count weekly sessions: %w", err)
	}

	minutes, err := s.sessions.CompletedMinutesSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly duration: %w", err)
	}
	hours := int(math.Round(float64(minutes) / 60))

	today := day.Of(now)
	series := make([]DaySessions, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDays(-i)
		c, err := s.sessions.CompletedCountOn(ctx, userID, d)
		if err != nil {
			return nil, fmt.Errorf("failed to count sessions for %s: %w", d, err)
		}
		series = append(series, DaySessions{Day: d.Label(), Sessions: c})
	}

	return &WeeklyStats{
		SessionsThisWeek: count,
		TotalHours:       hours,
		WeeklyData:       series,
	}, nil
}
