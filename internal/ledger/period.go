package ledger

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns the
// calendar day it names.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Day(t), nil
}

// FormatDay renders a calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// DaysBetween returns the number of calendar days from one day to another.
// Both arguments are truncated to their day first, so the result is exact.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// Window is an optional inclusive range of calendar days.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	d := Day(day)
	if w.Start != nil && d.Before(Day(*w.Start)) {
		return false
	}
	if w.End != nil && d.After(Day(*w.End)) {
		return false
	}
	return true
}

// MonthRange returns the first and last calendar day of the given month.
func MonthRange(year, month int) (start, end time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, fmt.Errorf("year must be between 1 and 9999, got %d", year)
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end, nil
}
