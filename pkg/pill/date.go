package pill

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DateOnly strips the clock so calendar dates compare by day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return DateOnly(t), nil
}

// ParseTimeOfDay validates an "HH:MM" value.
func ParseTimeOfDay(value string) (string, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q", value)
	}
	return t.Format(TimeLayout), nil
}

func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
