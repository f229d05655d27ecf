package sqlite

import (
	"time"
)

const (
	// DateLayout is the storage layout of due dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is RFC3339 with a fixed-width fraction so stored values sort chronologically.
	TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// FormatTimeForDB formats a time.Time value in UTC for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatTimePtrForDB formats a *time.Time value, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses an RFC3339 formatted time string from the database
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatDateForDB formats the calendar date of t as YYYY-MM-DD, returning nil if t is nil
func FormatDateForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(DateLayout)
}

// ParseDateFromDB parses a YYYY-MM-DD string into midnight UTC
func ParseDateFromDB(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
