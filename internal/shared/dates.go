package shared

import "time"

// DateLayout is the wire format for business dates (day precision).
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a business date, falling back to fallback when raw is empty.
func ParseDate(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return Day(fallback), nil
	}
	return time.Parse(DateLayout, raw)
}
