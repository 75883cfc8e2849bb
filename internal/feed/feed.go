// Package feed renders a year of bookings as an iCalendar subscription feed.
package feed

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/iliyamo/theatre-booking-calendar/internal/calendar"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

const productID = "-//Theatre Booking Calendar//EN"

// Build returns the ICS document for bookings, one all-day event each.
// Pencilled bookings are TENTATIVE. Event order follows the calendar:
// date, then creation time, then id.
func Build(name string, dates calendar.Dates, loc *time.Location, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(loc.String())

	for _, group := range calendar.ToBookingGroups(dates) {
		for _, b := range calendar.SortedBookings(dates[group.Date]) {
			addEvent(cal, b, loc, now)
		}
	}
	return cal.Serialize()
}

func addEvent(cal *ical.Calendar, b model.Booking, loc *time.Location, now time.Time) {
	ev := cal.AddEvent(b.ID + "@theatre-booking-calendar")
	ev.SetDtStampTime(now.UTC())

	day := time.UnixMilli(b.Date).In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	ev.SetAllDayStartAt(start)
	ev.SetAllDayEndAt(start.AddDate(0, 0, 1))

	ev.SetSummary(summary(b))
	ev.SetLocation(b.ResolveVenue())
	ev.SetDescription(description(b))
	if b.CreatedAt > 0 {
		ev.SetCreatedTime(time.UnixMilli(b.CreatedAt).UTC())
	}
	if b.TimeStamp > 0 {
		ev.SetModifiedAt(time.UnixMilli(b.TimeStamp).UTC())
	}
	if b.P {
		ev.SetStatus(ical.ObjectStatusTentative)
	} else {
		ev.SetStatus(ical.ObjectStatusConfirmed)
	}
}

func summary(b model.Booking) string {
	title := b.DisplayTitle()
	if title == "" {
		title = model.VenueTBA
	}
	if b.P {
		return title + " (pencilled)"
	}
	return title
}

func description(b model.Booking) string {
	lines := []string{
		fmt.Sprintf("Producer: %s", b.Producer),
		fmt.Sprintf("Press contact: %s", b.PressContact),
	}
	var tags []string
	if b.IsSeasonGala {
		tags = append(tags, "season gala")
	}
	if b.IsOperaDance {
		tags = append(tags, "opera/dance")
	}
	if len(tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(tags, ", "))
	}
	if b.DateBkd != "" {
		lines = append(lines, "Booked: "+b.DateBkd)
	}
	return strings.Join(lines, "\n")
}
