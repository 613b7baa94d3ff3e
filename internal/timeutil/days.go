package timeutil

import "time"

const day = 24 * time.Hour

// DayIndex keys a timestamp by calendar day as year*1000 + day of year, in
// the timestamp's own offset. Keys increase within a year but are not a
// day count, so callers must order days by time rather than by key.
func DayIndex(t time.Time) int {
	return t.Year()*1000 + t.YearDay()
}

// DaysBetween counts whole 24 hour units from a to b, truncated toward zero.
func DaysBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / day)
}

// HoursBetween counts whole hours from a to b, truncated toward zero.
func HoursBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / time.Hour)
}

// StartOfDay returns midnight at the start of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
