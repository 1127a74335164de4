package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses a DD/MM/YYYY date as entered in modal forms.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("02/01/2006", strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD/MM/YYYY", s)
	}
	return t, nil
}

// EndOfDay pushes a date to 23:59:59 so a return date covers the whole day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
