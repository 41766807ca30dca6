package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for every timestamp column.
// Fixed width keeps lexical order equal to chronological order, so range
// filters can compare the text directly.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatNullTime renders t, or returns nil for a NULL column.
func FormatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseTime parses a TimeLayout value.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseNullTime parses a nullable column.
func ParseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := ParseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
