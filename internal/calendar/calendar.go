package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout       = "2006-01-02"
	ChartLabelLayout = "Jan 2"
)

var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a calendar date. Besides the plain YYYY-MM-DD form, full RFC3339
// timestamps are accepted (older exports stored those), and only their date part is kept.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(ts), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf strips the clock part of t, keeping the calendar day as seen in t's own location.
// All week computations work on such UTC-midnight dates, so DST and zone offsets never
// move a record between days.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekNumber returns the week index used to group records:
//
//	ceil((zeroBasedDayOfYear + weekday(Jan 1) + 1) / 7)
//
// Weeks start on Sunday and week 1 is whatever part of the first week falls into
// January, so a year can have 54 weeks and the first days of January never share a
// number with the end of December. This is not ISO-8601; see WeekDateRange for that.
func WeekNumber(date time.Time) int {
	d := DateOf(date)
	jan1 := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	pastDays := d.YearDay() - 1
	return (pastDays + int(jan1.Weekday()) + 1 + 6) / 7
}

// WeekKey is the "{year}-{week}" bucket key of a date.
func WeekKey(date time.Time) string {
	d := DateOf(date)
	return fmt.Sprintf("%d-%d", d.Year(), WeekNumber(d))
}

// WeekDateRange returns the Monday..Sunday span of the given week using the ISO anchor
// rule: take Jan 1 + (week-1)*7 days, and if it falls on Sunday..Thursday back up to the
// Monday of that week, otherwise move forward to the next Monday. Note that Sunday counts
// as day 0 here, so a Sunday anchor moves forward one day.
//
// It does not agree with WeekNumber near year boundaries, and is only meant for range
// membership checks.
func WeekDateRange(year, week int) (start, end time.Time) {
	simple := time.Date(year, time.January, 1+(week-1)*7, 0, 0, 0, 0, time.UTC)
	dow := int(simple.Weekday())
	if dow <= 4 {
		start = simple.AddDate(0, 0, 1-dow)
	} else {
		start = simple.AddDate(0, 0, 8-dow)
	}
	end = start.AddDate(0, 0, 6)
	return start, end
}

func IsDateInWeek(date time.Time, year, week int) bool {
	start, end := WeekDateRange(year, week)
	d := DateOf(date)
	return !d.Before(start) && !d.After(end)
}

// SundayWeek returns the seven dates of the Sunday-start week containing date.
func SundayWeek(date time.Time) [7]time.Time {
	d := DateOf(date)
	sunday := d.AddDate(0, 0, -int(d.Weekday()))
	var days [7]time.Time
	for i := range days {
		days[i] = sunday.AddDate(0, 0, i)
	}
	return days
}
