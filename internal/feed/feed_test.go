package feed_test

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking-calendar/internal/calendar"
	"github.com/iliyamo/theatre-booking-calendar/internal/feed"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

func TestBuild(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	bookings := []model.Booking{
		{
			ID:           "b2",
			Date:         time.Date(2025, time.June, 16, 0, 0, 0, 0, loc).UnixMilli(),
			TitleOfShow:  "Macbeth",
			UktVenue:     "Apollo",
			Producer:     "Other",
			PressContact: "b@x.com",
			P:            true,
		},
		{
			ID:           "b1",
			Date:         time.Date(2025, time.June, 15, 0, 30, 0, 0, loc).UnixMilli(),
			TitleOfShow:  "Hamlet",
			Venue:        "The Globe",
			Producer:     "Prod Co",
			PressContact: "a@x.com",
			IsSeasonGala: true,
		},
	}
	dates := calendar.Aggregate(bookings, loc)

	out := feed.Build("Bookings 2025", dates, loc, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b1@theatre-booking-calendar", events[0].Id())
	assert.Equal(t, "Hamlet", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "The Globe", events[0].GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "20250615", events[0].GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "CONFIRMED", events[0].GetProperty(ical.ComponentPropertyStatus).Value)

	assert.Equal(t, "Macbeth (pencilled)", events[1].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "TENTATIVE", events[1].GetProperty(ical.ComponentPropertyStatus).Value)
	assert.Contains(t, out, "PRODID:-//Theatre Booking Calendar//EN")
}

func TestBuild_Empty(t *testing.T) {
	out := feed.Build("Bookings 2025", calendar.Dates{}, time.UTC, time.Now())
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
