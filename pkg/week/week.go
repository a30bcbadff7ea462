// Package week derives the WW-YYYY week codes that key every weekly grouping
// in the system. All functions take an explicit date so callers stay testable
// without touching the wall clock.
package week

import (
	"fmt"
	"time"
)

// Code returns the ISO-8601 week code for t, formatted WW-YYYY with a
// zero-padded week number, e.g. "07-2025". Weeks start on Monday and the year
// is the ISO week year, which can differ from the calendar year around
// January 1st.
func Code(t time.Time) string {
	year, wk := t.ISOWeek()
	return fmt.Sprintf("%02d-%d", wk, year)
}

// Monday returns the Monday of t's week, truncated to midnight in t's
// location.
func Monday(t time.Time) time.Time {
	dayNr := (int(t.Weekday()) + 6) % 7 // Monday = 0
	m := t.AddDate(0, 0, -dayNr)
	return time.Date(m.Year(), m.Month(), m.Day(), 0, 0, 0, 0, t.Location())
}

// Parse returns the Monday of the week identified by a WW-YYYY code.
func Parse(code string) (time.Time, error) {
	var wk, year int
	if _, err := fmt.Sscanf(code, "%d-%d", &wk, &year); err != nil {
		return time.Time{}, fmt.Errorf("invalid week code %q: %w", code, err)
	}
	if wk < 1 || wk > 53 {
		return time.Time{}, fmt.Errorf("invalid week code %q: week out of range", code)
	}

	// January 4th is always in ISO week 1. Walk back to that week's Monday
	// and advance whole weeks from there.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := Monday(jan4).AddDate(0, 0, (wk-1)*7)

	if gotYear, gotWk := monday.ISOWeek(); gotYear != year || gotWk != wk {
		return time.Time{}, fmt.Errorf("invalid week code %q: no such week", code)
	}
	return monday, nil
}
