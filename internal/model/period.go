package model

import "time"

// Period is a half-open time range [From, To). A zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

// Day returns the period covering the calendar day of t in t's location.
func Day(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Period{From: start, To: start.AddDate(0, 0, 1)}
}

// MonthToDate covers the first day of t's month up to the end of t's day.
func MonthToDate(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{From: start, To: Day(t).To}
}

func (p Period) IsZero() bool { return p.From.IsZero() && p.To.IsZero() }

// Contains reports whether t falls inside p.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}
