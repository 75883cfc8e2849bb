package service

import (
	"context"
	"sync"

	"github.com/iliyamo/theatre-booking-calendar/internal/calendar"
)

// YearView is a snapshot of one calendar year as a client session sees it.
type YearView struct {
	calendar.YearData
	Groups  []calendar.BookingGroup `json:"groups"`
	Days    int                     `json:"days"`
	Entries int                     `json:"entries"`
}

// CalendarState holds the year a session is looking at. Every read goes back
// to the store; nothing is shared between sessions.
type CalendarState struct {
	mu   sync.Mutex
	svc  *BookingService
	year int
}

func NewCalendarState(svc *BookingService, year int) *CalendarState {
	return &CalendarState{svc: svc, year: year}
}

// Year is the year currently selected.
func (c *CalendarState) Year() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.year
}

// Refresh rebuilds the view of the selected year from the store.
func (c *CalendarState) Refresh(ctx context.Context) (YearView, error) {
	return c.load(ctx, c.Year())
}

// ChangeYear switches the session to year. The selection only changes when
// the year could be loaded.
func (c *CalendarState) ChangeYear(ctx context.Context, year int) (YearView, error) {
	view, err := c.load(ctx, year)
	if err != nil {
		return YearView{}, err
	}
	c.mu.Lock()
	c.year = year
	c.mu.Unlock()
	return view, nil
}

func (c *CalendarState) load(ctx context.Context, year int) (YearView, error) {
	data, err := c.svc.Year(ctx, year)
	if err != nil {
		return YearView{}, err
	}
	return YearView{
		YearData: data,
		Groups:   calendar.ToBookingGroups(data.Dates),
		Days:     len(data.Dates),
		Entries:  data.Dates.Count(),
	}, nil
}
