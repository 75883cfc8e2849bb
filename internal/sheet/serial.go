package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// serialUnixEpoch is the legacy day serial of 1970-01-01. Day 1 is
// 1 Jan 1900 and the format counts a 29 Feb 1900 that never existed, so
// the effective zero is 30 Dec 1899.
const serialUnixEpoch = 25569

// SerialToDateKey converts a legacy spreadsheet day serial to dd/MM/yyyy,
// or dd/MM/yyyy HH:mm when the serial carries a time of day.
func SerialToDateKey(serial float64) (string, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 {
		return "", fmt.Errorf("invalid date serial %v", serial)
	}
	days := math.Floor(serial)
	minutes := int(math.Round((serial - days) * 24 * 60))
	t := time.Unix(0, 0).UTC().AddDate(0, 0, int(days)-serialUnixEpoch)
	if serial == days {
		return t.Format(model.DateKeyLayout), nil
	}
	t = t.Add(time.Duration(minutes) * time.Minute)
	return t.Format(model.DateTimeLayout), nil
}

// NormalizeDateCell accepts d/M/yyyy, d/M/yyyy HH:mm or a numeric serial and
// returns the canonical dd/MM/yyyy[ HH:mm] form.
func NormalizeDateCell(cell string) (string, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return "", fmt.Errorf("date is empty")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return SerialToDateKey(f)
	}
	if t, err := time.Parse("2/1/2006 15:04", s); err == nil {
		return t.Format(model.DateTimeLayout), nil
	}
	if t, err := time.Parse("2/1/2006", s); err == nil {
		return t.Format(model.DateKeyLayout), nil
	}
	return "", fmt.Errorf("invalid date %q: want dd/mm/yyyy or a date serial", cell)
}

// parseNormalizedDate turns the output of NormalizeDateCell into a local
// timestamp in loc.
func parseNormalizedDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(model.DateTimeLayout, s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(model.DateKeyLayout, s, loc)
}
