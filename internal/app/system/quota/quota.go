// internal/app/system/quota/quota.go

// Package quota holds the monthly notice-creation ceiling and the small
// pure helpers around it. The enforcement itself lives in the organizations
// store, where the counter is reserved atomically.
package quota

import "time"

// Limit is the number of notices an organization may create per calendar
// month.
const Limit = 50

// Period returns the calendar-month key the counter is scoped to, e.g.
// "2026-08". Stored on the organization next to notice_count; a reservation
// that sees a stale period resets the counter.
func Period(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// PeriodStart returns the first instant of the given period's month, for
// counting an organization's notices created within the period.
func PeriodStart(now time.Time) time.Time {
	t := now.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Fraction reports how much of the monthly ceiling is used, clamped to
// [0, 1]. Drives the quota progress indicator.
func Fraction(count int) float64 {
	if count <= 0 {
		return 0
	}
	if count >= Limit {
		return 1
	}
	return float64(count) / float64(Limit)
}

// Exhausted reports whether a counter value leaves no room for another
// notice.
func Exhausted(count int) bool {
	return count >= Limit
}
