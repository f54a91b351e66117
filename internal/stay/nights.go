package stay

import "time"

// Nights counts calendar days between start and end.
//
// Either date nil yields 1, so an in-progress form still prices one night.
// A zero Date is 0001-01-01, not a missing one.
// end on or before start yields 0; callers decide whether that is an error.
func Nights(start, end *Date) int {
	if start == nil || end == nil {
		return 1
	}
	days := calendarDays(start.t, end.t)
	if days <= 0 {
		return 0
	}
	return days
}

// Ordered reports whether both dates are present and end is strictly after start.
func Ordered(start, end *Date) bool {
	if start == nil || end == nil {
		return false
	}
	return end.After(*start)
}

const secondsPerDay = 24 * 60 * 60

// calendarDays subtracts day numbers rather than a time.Duration, which
// saturates past roughly 292 years.
func calendarDays(start, end time.Time) int {
	return int(dayNumber(end) - dayNumber(start))
}

func dayNumber(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}
