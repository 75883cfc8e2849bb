package calendar

import (
	"fmt"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// YearData is the full-year, gap-free view of bookings grouped by day. It
// is always derived from the store and never persisted.
type YearData struct {
	Year  int    `json:"year"`
	Range string `json:"range"`
	Dates Dates  `json:"dates"`
}

// NewYearData aggregates bookings and materializes every day of year.
func NewYearData(year int, bookings []model.Booking, loc *time.Location) YearData {
	return YearData{
		Year:  year,
		Range: RangeLabel(year),
		Dates: MaterializeYear(year, Aggregate(bookings, loc)),
	}
}

// RangeLabel is the human label for a calendar year.
func RangeLabel(year int) string {
	return fmt.Sprintf("01/01/%04d - 31/12/%04d", year, year)
}

// YearKeys returns the dd/MM/yyyy key of every day in year, in calendar order.
func YearKeys(year int) []string {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	keys := make([]string, 0, 366)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(model.DateKeyLayout))
	}
	return keys
}

// MaterializeYear returns a new map holding one entry per day of year:
// the aggregated bookings for that day, or an empty Day. Keys outside the
// year are dropped and the input map is left as is.
func MaterializeYear(year int, aggregated Dates) Dates {
	keys := YearKeys(year)
	out := make(Dates, len(keys))
	for _, key := range keys {
		if day, ok := aggregated[key]; ok {
			cp := make(Day, len(day))
			for id, b := range day {
				cp[id] = b
			}
			out[key] = cp
			continue
		}
		out[key] = Day{}
	}
	return out
}
