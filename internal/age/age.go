// Package age computes how far away a due date is.
package age

import "time"

// Remaining returns the time left until due and whether the due date has
// passed. Both dates are compared at day granularity in due's location, so a
// task due today is neither overdue nor in the future.
func Remaining(due time.Time, now time.Time) (time.Duration, bool) {
	dueDay := startOfDay(due)
	today := startOfDay(now.In(due.Location()))

	diff := dueDay.Sub(today)
	if diff < 0 {
		return -diff, true
	}
	return diff, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
