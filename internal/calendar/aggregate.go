// Package calendar turns flat booking lists into the date-keyed views used
// by the calendar and list screens.
package calendar

import (
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// Day maps booking id to booking for a single calendar day.
type Day map[string]model.Booking

// Dates maps a dd/MM/yyyy key to the bookings held on that day.
type Dates map[string]Day

// Aggregate groups bookings by their local calendar day. No ordering is
// implied; see ToBookingGroups.
func Aggregate(bookings []model.Booking, loc *time.Location) Dates {
	dates := make(Dates)
	for _, b := range bookings {
		key := model.DateKey(b.Date, loc)
		day, ok := dates[key]
		if !ok {
			day = make(Day)
			dates[key] = day
		}
		day[b.ID] = b
	}
	return dates
}

// Count returns the number of bookings across all days.
func (d Dates) Count() int {
	n := 0
	for _, day := range d {
		n += len(day)
	}
	return n
}
