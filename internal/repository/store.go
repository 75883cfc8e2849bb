package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// Store is the persistence contract for bookings. Ranges are half-open
// [startMs, endMs) over Booking.Date.
type Store interface {
	ListInRange(ctx context.Context, startMs, endMs int64) ([]model.Booking, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	Insert(ctx context.Context, b model.Booking) (string, error)
	Update(ctx context.Context, id string, patch model.BookingPatch) error
	Delete(ctx context.Context, id string) error
}

func newID() string {
	return uuid.NewString()
}
