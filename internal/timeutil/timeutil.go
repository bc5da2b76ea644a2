// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodAllTime   Period = "all-time"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	Period7Days     Period = "7days"
	Period14Days    Period = "14days"
	Period30Days    Period = "30days"
	Period90Days    Period = "90days"
)

var Range = map[Period]int{
	PeriodAllTime:   0,
	PeriodToday:     0,
	PeriodYesterday: -1,
	Period7Days:     -6,
	Period14Days:    -13,
	Period30Days:    -29,
	Period90Days:    -89,
}

var PeriodCollection = []Period{
	PeriodAllTime,
	PeriodToday,
	PeriodYesterday,
	Period7Days,
	Period14Days,
	Period30Days,
	Period90Days,
}

// Bounds returns the start and end of the period relative to now. The zero
// start is returned for PeriodAllTime.
func (p Period) Bounds(now time.Time) (since, until time.Time) {
	until = RoundToEnd(now)

	if p == PeriodAllTime {
		return time.Time{}, until
	}

	since = RoundToStart(now.AddDate(0, 0, Range[p]))

	if p == PeriodYesterday {
		until = RoundToEnd(since)
	}

	return since, until
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		0,
		t.Location(),
	)
}

// FormatClock renders d as H:MM:SS, or M:SS below one hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%d:%02d", m, s)
}

// Describe renders a reminder interval in words, e.g. "15 minutes" or
// "1 hour".
func Describe(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}

		return fmt.Sprintf("%d hours", h)
	}

	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}

	return fmt.Sprintf("%d minutes", m)
}

// ToKey converts a time value to a database key.
func ToKey(t time.Time) []byte {
	return []byte(t.UTC().Format(time.RFC3339Nano))
}

// FromKey parses a value produced by ToKey.
func FromKey(b []byte) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, string(b))
}
