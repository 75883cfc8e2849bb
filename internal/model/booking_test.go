package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

func TestBooking_ResolveVenue(t *testing.T) {
	tests := []struct {
		name    string
		booking model.Booking
		want    string
	}{
		{"other venue", model.Booking{OtherVenue: "The Globe"}, "The Globe"},
		{"all empty tba", model.Booking{VenueIsTba: true}, "TBA"},
		{"member wins", model.Booking{Venue: "Lyceum", UktVenue: "Palladium", OtherVenue: "Globe"}, "Lyceum"},
		{"ukt before other", model.Booking{UktVenue: "Palladium", OtherVenue: "Globe", AffiliateVenue: "Aff"}, "Palladium"},
		{"affiliate last", model.Booking{AffiliateVenue: "Aff"}, "Aff"},
		{"blank is empty", model.Booking{Venue: "  ", AffiliateVenue: "Aff"}, "Aff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.booking.ResolveVenue())
		})
	}
}

func TestBooking_HasVenue(t *testing.T) {
	assert.False(t, model.Booking{}.HasVenue())
	assert.True(t, model.Booking{VenueIsTba: true}.HasVenue())
	assert.True(t, model.Booking{OtherVenue: "Globe"}.HasVenue())
}

func TestBookingPatch_Apply(t *testing.T) {
	title := "Macbeth"
	p := false
	orig := model.Booking{ID: "1", TitleOfShow: "Hamlet", P: true, Producer: "X", CreatedAt: 5}

	got := model.BookingPatch{TitleOfShow: &title, P: &p}.Apply(orig)

	assert.Equal(t, "Macbeth", got.TitleOfShow)
	assert.False(t, got.P)
	assert.Equal(t, "X", got.Producer)
	assert.Equal(t, int64(5), got.CreatedAt)
	assert.Equal(t, "Hamlet", orig.TitleOfShow)
}

func TestBookingPatch_Columns(t *testing.T) {
	venue := "Lyceum"
	tba := true
	cols := model.BookingPatch{Venue: &venue, VenueIsTba: &tba}.Columns()
	assert.Equal(t, map[string]any{"venue": "Lyceum", "venue_is_tba": true}, cols)
	assert.Empty(t, model.BookingPatch{}.Columns())
}

func TestExtra_ScanValue(t *testing.T) {
	v, err := model.Extra{"Notes": "late get-in"}.Value()
	require.NoError(t, err)

	var e model.Extra
	require.NoError(t, e.Scan(v))
	assert.Equal(t, "late get-in", e["Notes"])

	require.NoError(t, e.Scan([]byte("{}")))
	assert.Nil(t, e)
	require.NoError(t, e.Scan(nil))
	assert.Error(t, e.Scan(42))
}

func TestParseDateKey(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	d, err := model.ParseDateKey("5/6/2025", loc)
	require.NoError(t, err)
	assert.Equal(t, "05/06/2025", model.DateKey(d.UnixMilli(), loc))
	assert.Equal(t, "2025-06-05", model.RawDate(d.UnixMilli(), loc))
	assert.Equal(t, "Thursday", model.Weekday(d.UnixMilli(), loc))

	_, err = model.ParseDateKey("2025-06-05", loc)
	assert.Error(t, err)

	start, end := model.DayBounds(d.Add(15*time.Hour).UnixMilli(), loc)
	assert.Equal(t, d.UnixMilli(), start)
	assert.Equal(t, d.AddDate(0, 0, 1).UnixMilli(), end)
}
