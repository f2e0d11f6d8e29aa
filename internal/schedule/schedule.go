// Package schedule implements the pickup time-window policy: which day the
// next pickup falls on and whether the completion window is currently open.
// All functions are pure over the supplied wall-clock time; no timezone
// normalization is performed.
package schedule

import (
	"time"

	"github.com/azrishaharin/KonMari/internal/domain"
)

const (
	// StartHour is the first hour of the daily completion window (20:00).
	StartHour = 20
	// EndHour bounds the window exclusively (22:00).
	EndHour = 22
)

// IsPickupDay reports whether d is in the weekly pickup pattern.
func IsPickupDay(d time.Weekday) bool {
	for _, pd := range domain.PickupDays {
		if d == pd {
			return true
		}
	}
	return false
}

// NextPickupDay returns the weekday of the next pickup on or after now.
// Today counts as long as the window has not closed yet.
func NextPickupDay(now time.Time) time.Weekday {
	return NextPickupDate(now).Weekday()
}

// NextPickupDate returns the calendar date (midnight, now's location) of the
// next pickup on or after now.
func NextPickupDate(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if IsPickupDay(now.Weekday()) && now.Hour() < EndHour {
		return day
	}
	for {
		day = day.AddDate(0, 0, 1)
		if IsPickupDay(day.Weekday()) {
			return day
		}
	}
}

// IsPickupTime reports whether the completion window is open: a pickup day
// with the hour in [StartHour, EndHour). This gates the UI action only; the
// server accepts completions at any time.
func IsPickupTime(now time.Time) bool {
	return IsPickupDay(now.Weekday()) && now.Hour() >= StartHour && now.Hour() < EndHour
}
