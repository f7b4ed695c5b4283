package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", s, apperr.ErrInvalidArgument)
	}
	return t, nil
}

// ParseDateTime parses a YYYY-MM-DD date and an HH:MM time in UTC.
// An empty time means midnight.
func ParseDateTime(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return d, nil
	}
	c, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q must be HH:MM: %w", clock, apperr.ErrInvalidArgument)
	}
	return d.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute), nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// HourPeriod maps an hour 0..23 to its double-hour period 1..12, where
// 23:00-00:59 is 子 (1), 01:00-02:59 is 丑 (2) and so on.
func HourPeriod(hour int) (int, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d outside [0,23]: %w", hour, apperr.ErrInvalidArgument)
	}
	return (hour+1)%24/2 + 1, nil
}
