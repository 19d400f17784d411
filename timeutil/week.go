// Package timeutil holds the week-boundary math used by timesheets.
// All calculations run in UTC; a week start is always a UTC midnight.
package timeutil

import "time"

// Work-week anchor values, stored on organisation settings.
const (
	WeekStartMonday = "monday"
	WeekStartSunday = "sunday"
)

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the start of the week containing t, anchored on the
// given day. An unrecognized anchor falls back to monday.
func WeekStart(t time.Time, anchor string) time.Time {
	d := StartOfDay(t)
	weekday := int(d.Weekday()) // 0 = Sunday

	var diff int
	if anchor == WeekStartSunday {
		diff = -weekday
	} else {
		if weekday == 0 {
			diff = -6
		} else {
			diff = 1 - weekday
		}
	}
	return d.AddDate(0, 0, diff)
}

// WeekEnd returns the last instant of the week that starts at weekStart:
// six days later at 23:59:59.999.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)
}

// IsPast reports whether t is strictly before today's UTC midnight.
func IsPast(t time.Time) bool {
	return t.Before(StartOfDay(time.Now()))
}

// CurrentWeekStart returns the monday of the current week. Approval stats
// use this regardless of the organisation's week-start setting.
func CurrentWeekStart() time.Time {
	return WeekStart(time.Now(), WeekStartMonday)
}

// DateString formats t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// DayIndex returns the zero-based offset of date within the week starting
// at weekStart (0 = first day .. 6 = last), or -1 if outside the week.
func DayIndex(date, weekStart time.Time) int {
	diff := int(StartOfDay(date).Sub(StartOfDay(weekStart)).Hours() / 24)
	if diff < 0 || diff > 6 {
		return -1
	}
	return diff
}
