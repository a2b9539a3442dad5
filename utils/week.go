// utils/week.go - ISO week windows and timestamp formats
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout used in every JSON body.
const TimeFormat = "2006-01-02 15:04:05"

// DateFormat is the short date layout accepted for deadlines and
// date-range filters.
const DateFormat = "2006-01-02"

// FormatTime renders t in the API timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}

// FormatTimePtr renders t, or nil when unset.
func FormatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(TimeFormat)
}

// ParseDeadline accepts "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD".
func ParseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(TimeFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline format: %q", s)
	}
	return t, nil
}

// WeekWindow converts a "YYYY-Wnn" label to its Monday-start window.
// start is the Monday 00:00, end is the following Sunday 00:00; queries
// match created_at in [start, end+1day].
func WeekWindow(week string) (start, end time.Time, err error) {
	parts := strings.SplitN(week, "-W", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week format: %q", week)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week format: %q", week)
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week format: %q", week)
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Monday-indexed weekday of Jan 1 (Monday=0 .. Sunday=6).
	offset := (int(jan1.Weekday()) + 6) % 7
	start = jan1.AddDate(0, 0, (num-1)*7-offset)
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// WeekQueryEnd is the exclusive-ish upper bound the task queries use:
// the window end plus one day, matching the inclusive day-granular
// filtering of the reporting flows.
func WeekQueryEnd(end time.Time) time.Time {
	return end.AddDate(0, 0, 1)
}
