package util

import "time"

// DateLayout is the ISO-8601 calendar date format used on the wire
const DateLayout = "2006-01-02"

// MonthBounds returns the first and last day of a calendar month (UTC midnight)
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one
	end := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// YearBounds returns January 1st and December 31st of a year
func YearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CurrentPeriod returns the month and year of t
func CurrentPeriod(t time.Time) (month, year int) {
	return int(t.Month()), t.Year()
}

// IsValidMonth reports whether month is in 1..12
func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
