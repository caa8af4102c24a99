package ui

import (
	"fmt"
	"time"

	internalage "github.com/amonks/kanban/internal/age"
)

// FormatDue describes a due date relative to now: "-", "today",
// "in 3d", or "overdue 2d".
func FormatDue(due *time.Time, now time.Time) string {
	if due == nil || due.IsZero() {
		return "-"
	}
	remaining, overdue := internalage.Remaining(*due, now)
	days := int(remaining / (24 * time.Hour))
	switch {
	case days == 0:
		return "today"
	case overdue:
		return fmt.Sprintf("overdue %dd", days)
	default:
		return fmt.Sprintf("in %dd", days)
	}
}

// FormatDate formats a date as YYYY-MM-DD, or "-" when unset.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
