package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/calendar"
	"github.com/iliyamo/theatre-booking-calendar/internal/clash"
	"github.com/iliyamo/theatre-booking-calendar/internal/feed"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/sheet"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

const (
	minYear = 1900
	maxYear = 9999
)

// CheckYear rejects years the calendar cannot show.
func CheckYear(year int) error {
	if year < minYear || year > maxYear {
		return validation.FieldError("year", fmt.Sprintf("must be between %d and %d", minYear, maxYear))
	}
	return nil
}

func (s *BookingService) yearBookings(ctx context.Context, year int) ([]model.Booking, error) {
	if err := CheckYear(year); err != nil {
		return nil, err
	}
	start, end := model.YearBounds(year, s.loc)
	return s.List(ctx, start, end)
}

// Year returns the gap-free calendar for year.
func (s *BookingService) Year(ctx context.Context, year int) (calendar.YearData, error) {
	bookings, err := s.yearBookings(ctx, year)
	if err != nil {
		return calendar.YearData{}, err
	}
	return calendar.NewYearData(year, bookings, s.loc), nil
}

// Groups returns the year's days as date-sorted table sections.
func (s *BookingService) Groups(ctx context.Context, year int) ([]calendar.BookingGroup, error) {
	data, err := s.Year(ctx, year)
	if err != nil {
		return nil, err
	}
	return calendar.ToBookingGroups(data.Dates), nil
}

// ClashView is the current clash state of one day.
type ClashView struct {
	Date           string          `json:"date"`
	HasClash       bool            `json:"hasClash"`
	NotifyContacts []string        `json:"notifyContacts"`
	Bookings       []model.Booking `json:"bookings"`
}

// ClashOn reports the bookings and contacts on day without sending email.
func (s *BookingService) ClashOn(ctx context.Context, day time.Time) (ClashView, error) {
	start, end := model.DayBounds(day.UnixMilli(), s.loc)
	bookings, err := s.List(ctx, start, end)
	if err != nil {
		return ClashView{}, err
	}
	view := ClashView{
		Date:           model.DateKey(day.UnixMilli(), s.loc),
		NotifyContacts: []string{},
		Bookings:       bookings,
	}
	if len(bookings) > 0 {
		res := clash.Detect(bookings[0], bookings)
		view.HasClash = res.HasClash
		view.NotifyContacts = res.NotifyContacts
	}
	return view, nil
}

// ExportTable flattens the year's bookings in calendar order.
func (s *BookingService) ExportTable(ctx context.Context, year int) (sheet.Table, error) {
	bookings, err := s.yearBookings(ctx, year)
	if err != nil {
		return sheet.Table{}, err
	}
	dates := calendar.Aggregate(bookings, s.loc)
	ordered := make([]model.Booking, 0, len(bookings))
	for _, g := range calendar.ToBookingGroups(dates) {
		ordered = append(ordered, calendar.SortedBookings(dates[g.Date])...)
	}
	return sheet.BuildTable(ordered, s.loc), nil
}

// ExportFeed renders the year as an iCalendar document.
func (s *BookingService) ExportFeed(ctx context.Context, year int) (string, error) {
	bookings, err := s.yearBookings(ctx, year)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("Theatre bookings %d", year)
	return feed.Build(name, calendar.Aggregate(bookings, s.loc), s.loc, s.now()), nil
}
