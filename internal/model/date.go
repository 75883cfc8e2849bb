package model

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts shared by the calendar views, the spreadsheet codec and the
// clash notifications. DateKeyLayout is the lookup key used everywhere;
// changing it breaks stored exports and cached views.
const (
	DateKeyLayout  = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
	RawDateLayout  = "2006-01-02"
)

// MinDate and MaxDate bound Booking.Date: every day of the years 1900 to
// 9999 in any zone lies in [MinDate, MaxDate).
var (
	MinDate = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC).UnixMilli()
	MaxDate = time.Date(10000, time.January, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
)

// DateKey formats a millisecond timestamp as dd/MM/yyyy in loc.
func DateKey(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(DateKeyLayout)
}

// RawDate formats a millisecond timestamp as yyyy-MM-dd in loc.
func RawDate(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(RawDateLayout)
}

// Weekday returns the weekday name for a millisecond timestamp in loc.
func Weekday(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Weekday().String()
}

// ParseDateKey parses a d/M/yyyy key (leading zeros optional) as local
// midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2/1/2006", strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want dd/mm/yyyy", key)
	}
	return t, nil
}

// DayBounds returns [start, end) in ms for the local calendar day holding ms.
func DayBounds(ms int64, loc *time.Location) (int64, int64) {
	t := time.UnixMilli(ms).In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UnixMilli(), end.UnixMilli()
}

// YearBounds returns [start, end) in ms for the calendar year in loc.
func YearBounds(year int, loc *time.Location) (int64, int64) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start.UnixMilli(), start.AddDate(1, 0, 0).UnixMilli()
}
