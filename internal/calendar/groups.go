package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// BookingGroup is one table section: a date and the bookings held on it.
type BookingGroup struct {
	Date    string `json:"date"`
	SubRows []Row  `json:"subRows"`
}

// Row is the display shape of a booking in list/table views. Text fields
// are never absent, only empty.
type Row struct {
	Date           string `json:"date"`
	Range          string `json:"range"`
	Day            string `json:"day"`
	TitleOfShow    string `json:"titleOfShow"`
	Venue          string `json:"venue"`
	Producer       string `json:"producer"`
	PressContact   string `json:"pressContact"`
	DateBkd        string `json:"dateBkd"`
	P              bool   `json:"p"`
	IsSeasonGala   bool   `json:"isSeasonGala"`
	IsOperaDance   bool   `json:"isOperaDance"`
	VenueIsTba     bool   `json:"venueIsTba"`
	ShowTitleIsTba bool   `json:"showTitleIsTba"`
}

// NewRow builds the display row for a booking filed under dateKey.
func NewRow(dateKey string, b model.Booking) Row {
	return Row{
		Date:           dateKey,
		Range:          b.ID,
		Day:            b.Day,
		TitleOfShow:    b.DisplayTitle(),
		Venue:          b.ResolveVenue(),
		Producer:       strings.TrimSpace(b.Producer),
		PressContact:   strings.TrimSpace(b.PressContact),
		DateBkd:        b.DateBkd,
		P:              b.P,
		IsSeasonGala:   b.IsSeasonGala,
		IsOperaDance:   b.IsOperaDance,
		VenueIsTba:     b.VenueIsTba,
		ShowTitleIsTba: b.ShowTitleIsTba,
	}
}

// ToBookingGroups converts the per-day mapping into groups sorted by
// calendar date. Keys that are not valid dates sort after all valid ones.
// Rows within a day are ordered by creation time, then id.
func ToBookingGroups(dates Dates) []BookingGroup {
	type keyed struct {
		key string
		at  time.Time
		ok  bool
	}
	keys := make([]keyed, 0, len(dates))
	for k := range dates {
		t, err := time.Parse("2/1/2006", strings.TrimSpace(k))
		keys = append(keys, keyed{key: k, at: t, ok: err == nil})
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.key < b.key
	})

	groups := make([]BookingGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, BookingGroup{
			Date:    k.key,
			SubRows: dayRows(k.key, dates[k.key]),
		})
	}
	return groups
}

func dayRows(key string, day Day) []Row {
	bookings := SortedBookings(day)
	rows := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, NewRow(key, b))
	}
	return rows
}

// SortedBookings returns the bookings of a day ordered by CreatedAt, then ID.
func SortedBookings(day Day) []model.Booking {
	out := make([]model.Booking, 0, len(day))
	for _, b := range day {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
