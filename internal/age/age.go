// Package age measures calendar distances for deadline display.
package age

import "time"

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysUntil counts whole calendar days from now's day to day's day. It is
// negative when day is in the past. Both are compared in now's location.
func DaysUntil(day, now time.Time) int {
	from := StartOfDay(now)
	to := StartOfDay(day.In(now.Location()))
	// Round to absorb DST shifts inside the span.
	return int(to.Sub(from).Round(24*time.Hour) / (24 * time.Hour))
}
