package utils

import (
	"testing"
	"time"
)

func TestWeekWindow(t *testing.T) {
	start, end, err := WeekWindow("2025-W28")
	if err != nil {
		t.Fatalf("WeekWindow: %v", err)
	}
	wantStart := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if start.Weekday() != time.Monday {
		t.Errorf("start weekday = %v, want Monday", start.Weekday())
	}
	if !end.Equal(wantStart.AddDate(0, 0, 6)) {
		t.Errorf("end = %v, want start+6d", end)
	}

	start, _, err = WeekWindow("2025-W01")
	if err != nil {
		t.Fatalf("WeekWindow W01: %v", err)
	}
	// Jan 1 2025 is a Wednesday, so the week starts in December.
	if !start.Equal(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("W01 start = %v, want 2024-12-30", start)
	}

	for _, bad := range []string{"2025", "week28", "2025-Wxx", "abcd-W10"} {
		if _, _, err := WeekWindow(bad); err == nil {
			t.Errorf("WeekWindow(%q) accepted malformed input", bad)
		}
	}
}

func TestWeekQueryEnd(t *testing.T) {
	end := time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC)
	if got := WeekQueryEnd(end); !got.Equal(end.AddDate(0, 0, 1)) {
		t.Errorf("WeekQueryEnd = %v, want end+1d", got)
	}
}

func TestParseDeadline(t *testing.T) {
	got, err := ParseDeadline("2025-07-10")
	if err != nil {
		t.Fatalf("date-only deadline: %v", err)
	}
	if !got.Equal(time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only = %v, want midnight", got)
	}

	got, err = ParseDeadline("2025-07-10 08:30:00")
	if err != nil {
		t.Fatalf("full deadline: %v", err)
	}
	if got.Hour() != 8 || got.Minute() != 30 {
		t.Errorf("full deadline time = %v", got)
	}

	if _, err := ParseDeadline("10/07/2025"); err == nil {
		t.Error("malformed deadline accepted")
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 7, 10, 8, 30, 0, 0, time.UTC)
	if got := FormatTime(ts); got != "2025-07-10 08:30:00" {
		t.Errorf("FormatTime = %q", got)
	}
	if got := FormatTimePtr(nil); got != nil {
		t.Errorf("FormatTimePtr(nil) = %v", got)
	}
	if got := FormatTimePtr(&ts); got != "2025-07-10 08:30:00" {
		t.Errorf("FormatTimePtr = %v", got)
	}
}
