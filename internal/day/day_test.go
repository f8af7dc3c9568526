package day

import (
	"testing"
	"time"
)

func TestOfTruncatesTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 3, 15, 6, 12, 3, 0, time.UTC)
	night := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)

	if !Of(morning).Equal(Of(night)) {
		t.Errorf("expected %v and %v to be the same day", morning, night)
	}

	got := Of(night).Time()
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected midnight %v, got %v", want, got)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"previous day", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), -1, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"across month start", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), -1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"across year end", time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC), 1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Of(tt.from).AddDays(tt.n).Time()
			if !got.Equal(tt.want) {
				t.Errorf("AddDays(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestBefore(t *testing.T) {
	a := Of(time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC))
	b := Of(time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC))

	if !a.Before(b) {
		t.Error("expected March 14 to be before March 15")
	}
	if b.Before(a) {
		t.Error("expected March 15 not to be before March 14")
	}
	if a.Before(a) {
		t.Error("a day is not before itself")
	}
}

func TestLabel(t *testing.T) {
	// 2024-03-15 is a Friday.
	d := Of(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	if d.Label() != "Fri" {
		t.Errorf("expected label Fri, got %s", d.Label())
	}
	if d.Weekday() != time.Friday {
		t.Errorf("expected Friday, got %s", d.Weekday())
	}
}

func TestIsZero(t *testing.T) {
	var d Day
	if !d.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if Of(time.Now()).IsZero() {
		t.Error("today should not report IsZero")
	}
}
