package day

import "time"

// Day is a calendar day with no time-of-day component. The zero value is the
// zero time's day; use IsZero to detect it. All streak comparisons operate on
// Day values so that two timestamps on the same calendar day always compare
// equal, regardless of hour.
type Day struct {
	t time.Time
}

// Of truncates a timestamp to its calendar day in the timestamp's location.
func Of(t time.Time) Day {
	y, m, d := t.Date()
	return Day{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// Today returns the current calendar day for the given clock.
func Today(now func() time.Time) Day {
	return Of(now())
}

// Time returns the midnight-aligned timestamp for the day.
func (d Day) Time() time.Time {
	return d.t
}

// AddDays returns the day n calendar days later (earlier for negative n).
func (d Day) AddDays(n int) Day {
	return Of(d.t.AddDate(0, 0, n))
}

// Equal reports whether two values denote the same calendar day.
func (d Day) Equal(o Day) bool {
	return d.t.Equal(o.t)
}

// Before reports whether d is an earlier calendar day than o.
func (d Day) Before(o Day) bool {
	return d.t.Before(o.t)
}

func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// Weekday returns the day's weekday.
func (d Day) Weekday() time.Weekday {
	return d.t.Weekday()
}

// Label returns the three-letter weekday abbreviation ("Mon", "Tue", ...).
func (d Day) Label() string {
	return d.t.Format("Mon")
}

func (d Day) String() string {
	return d.t.Format("2006-01-02")
}
