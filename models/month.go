package models

import (
	"errors"
	"regexp"
	"time"
)

const monthLayout = "2006-01"

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ErrInvalidMonth is returned for month keys that are not YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month format, expected YYYY-MM")

// Month is a YYYY-MM key, the grouping unit for balances and filtered listings.
type Month string

// ParseMonth validates s against YYYY-MM and rejects impossible months such as 2024-13.
func ParseMonth(s string) (Month, error) {
	if !monthPattern.MatchString(s) {
		return "", ErrInvalidMonth
	}
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", ErrInvalidMonth
	}
	return Month(s), nil
}

// MonthOf returns the month key a point in time falls into.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

// CurrentMonth returns the month key for now in the local zone.
func CurrentMonth() Month {
	return MonthOf(time.Now())
}

// Start returns midnight UTC of the first day of the month.
func (m Month) Start() time.Time {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// End returns the first day of the following month (exclusive bound).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

func (m Month) String() string {
	return string(m)
}
