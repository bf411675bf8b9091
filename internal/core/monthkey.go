package core

import (
	"fmt"
	"strconv"
	"strings"
)

// MonthKey is a canonical "YYYY-MM" month identifier.
type MonthKey string

// ParseMonthKey canonicalizes a "YYYY-M" or "YYYY-MM" string.
//
// The input must split on "-" into exactly two integer parts. The year is
// zero-padded to four digits and the month to two, so "2025-8" and
// "2025-08" produce the same key. Months outside 1..12 are rejected.
func ParseMonthKey(s string) (MonthKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: got %q", ErrInvalidMonth, s)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", fmt.Errorf("%w: bad year in %q", ErrInvalidMonth, s)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", fmt.Errorf("%w: bad month in %q", ErrInvalidMonth, s)
	}
	if year < 1 || year > 9999 {
		return "", fmt.Errorf("%w: year %d out of range", ErrInvalidMonth, year)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: month %d out of range", ErrInvalidMonth, month)
	}
	return MonthKeyFor(year, month), nil
}

// MonthKeyFor builds the key for an already validated year and month.
func MonthKeyFor(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// YearPrefix is the prefix shared by every key of the given year.
func YearPrefix(year int) string {
	return fmt.Sprintf("%04d-", year)
}

func ValidateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

func (k MonthKey) String() string {
	return string(k)
}

// Year returns the year component, or 0 for a malformed key.
func (k MonthKey) Year() int {
	y, _ := strconv.Atoi(strings.SplitN(string(k), "-", 2)[0])
	return y
}

// Month returns the month component, or 0 for a malformed key.
func (k MonthKey) Month() int {
	parts := strings.SplitN(string(k), "-", 2)
	if len(parts) != 2 {
		return 0
	}
	m, _ := strconv.Atoi(parts[1])
	return m
}
