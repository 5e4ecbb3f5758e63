package utils

import (
	"fmt"
	"time"
)

// dateLayouts are the formats accepted from uploaded CSVs and provider
// responses, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a date string in any of the accepted layouts (RFC 3339
// timestamps included) and truncates the result to a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOnly(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DateOnly truncates a time to midnight UTC on the same calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a time.Time to "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DaysUntil returns the number of whole calendar days from now until t.
// Negative values mean t is in the past.
func DaysUntil(now, t time.Time) int {
	return int(DateOnly(t).Sub(DateOnly(now)).Hours() / 24)
}
