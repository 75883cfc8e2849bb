package service

import (
	"strings"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

// BookingInput is a booking as submitted by a client. The date may be
// given as epoch milliseconds in date or as dd/MM/yyyy in dateKey. Date
// shadows the embedded field so that an absent date can be told apart
// from 01/01/1970 UTC.
type BookingInput struct {
	model.Booking
	Date    *int64 `json:"date,omitempty"`
	DateKey string `json:"dateKey,omitempty"`
}

// ToBooking resolves dateKey in loc. One of date or dateKey is required.
func (in BookingInput) ToBooking(loc *time.Location) (model.Booking, error) {
	b := in.Booking
	switch key := strings.TrimSpace(in.DateKey); {
	case key != "":
		t, err := model.ParseDateKey(key, loc)
		if err != nil {
			return model.Booking{}, validation.FieldError("dateKey", "must be a dd/mm/yyyy date")
		}
		b.Date = t.UnixMilli()
	case in.Date != nil:
		b.Date = *in.Date
	default:
		return model.Booking{}, validation.FieldError("date", "is required")
	}
	return b, nil
}

// PatchInput is a partial update as submitted by a client.
type PatchInput struct {
	model.BookingPatch
	DateKey *string `json:"dateKey,omitempty"`
}

// ToPatch resolves dateKey in loc.
func (in PatchInput) ToPatch(loc *time.Location) (model.BookingPatch, error) {
	p := in.BookingPatch
	if in.DateKey != nil {
		t, err := model.ParseDateKey(strings.TrimSpace(*in.DateKey), loc)
		if err != nil {
			return model.BookingPatch{}, validation.FieldError("dateKey", "must be a dd/mm/yyyy date")
		}
		ms := t.UnixMilli()
		p.Date = &ms
	}
	return p, nil
}

// BookingOutput is a booking with its calendar key, as returned to clients.
type BookingOutput struct {
	model.Booking
	DateKey string `json:"dateKey"`
}

func NewBookingOutput(b model.Booking, loc *time.Location) BookingOutput {
	return BookingOutput{Booking: b, DateKey: model.DateKey(b.Date, loc)}
}
