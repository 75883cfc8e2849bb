// Package service implements the booking flows: create, edit, delete,
// import and the read-side calendar views. Handlers and the operation table
// both go through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/clash"
	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/repository"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

// BookingStore is the persistence the service needs.
type BookingStore interface {
	ListInRange(ctx context.Context, startMs, endMs int64) ([]model.Booking, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	Insert(ctx context.Context, b model.Booking) (string, error)
	Update(ctx context.Context, id string, patch model.BookingPatch) error
	Delete(ctx context.Context, id string) error
}

// ClashChecker runs clash detection after a write.
type ClashChecker interface {
	Check(ctx context.Context, candidate model.Booking, previous *model.Booking) clash.Result
}

// CacheInvalidator drops cached calendar reads after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Mutation is the outcome of a create or edit.
type Mutation struct {
	Booking model.Booking `json:"booking"`
	Clash   clash.Result  `json:"clash"`
}

// BookingService owns the write flows and the calendar reads.
type BookingService struct {
	store     BookingStore
	validator *validation.Validator
	clash     ClashChecker
	cache     CacheInvalidator
	loc       *time.Location
	now       func() time.Time
}

// NewBookingService wires the service. cache may be nil.
func NewBookingService(store BookingStore, v *validation.Validator, checker ClashChecker, cache CacheInvalidator, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	return &BookingService{
		store:     store,
		validator: v,
		clash:     checker,
		cache:     cache,
		loc:       loc,
		now:       time.Now,
	}
}

// Location is the zone calendar days are computed in.
func (s *BookingService) Location() *time.Location { return s.loc }

// Get returns one booking.
func (s *BookingService) Get(ctx context.Context, id string) (model.Booking, error) {
	return s.store.Get(ctx, id)
}

// List returns bookings with startMs <= date < endMs.
func (s *BookingService) List(ctx context.Context, startMs, endMs int64) ([]model.Booking, error) {
	out, err := s.store.ListInRange(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return out, nil
}

// Create validates and stores a new booking on behalf of identity, then
// checks its day for clashes.
func (s *BookingService) Create(ctx context.Context, identity string, b model.Booking) (Mutation, error) {
	b.ID = ""
	b.CreatedAt = 0
	b.UserID = identity
	b.TimeStamp = s.now().UnixMilli()
	b.Day = model.Weekday(b.Date, s.loc)
	if err := s.validator.Validate(b); err != nil {
		return Mutation{}, err
	}

	id, err := s.store.Insert(ctx, b)
	if err != nil {
		return Mutation{}, fmt.Errorf("creating booking: %w", err)
	}
	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return Mutation{}, fmt.Errorf("reading created booking: %w", err)
	}
	s.invalidate(ctx)

	logging.FromContext(ctx).WithField("booking_id", id).Info("Booking created")
	return Mutation{Booking: stored, Clash: s.clash.Check(ctx, stored, nil)}, nil
}

// Edit applies patch to a booking submitted by identity. Clash detection
// only runs when the booking moved to another day.
func (s *BookingService) Edit(ctx context.Context, identity, id string, patch model.BookingPatch) (Mutation, error) {
	current, err := s.owned(ctx, identity, id)
	if err != nil {
		return Mutation{}, err
	}

	if patch.Date != nil {
		day := model.Weekday(*patch.Date, s.loc)
		patch.Day = &day
	}
	now := s.now().UnixMilli()
	patch.TimeStamp = &now

	merged := patch.Apply(current)
	if err := s.validator.Validate(merged); err != nil {
		return Mutation{}, err
	}
	if err := s.store.Update(ctx, id, patch); err != nil && !errors.Is(err, repository.ErrNoChange) {
		return Mutation{}, fmt.Errorf("updating booking: %w", err)
	}
	s.invalidate(ctx)

	logging.FromContext(ctx).WithField("booking_id", id).Info("Booking updated")
	return Mutation{Booking: merged, Clash: s.clash.Check(ctx, merged, &current)}, nil
}

// Delete removes a booking submitted by identity.
func (s *BookingService) Delete(ctx context.Context, identity, id string) error {
	if _, err := s.owned(ctx, identity, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	s.invalidate(ctx)

	logging.FromContext(ctx).WithField("booking_id", id).Info("Booking deleted")
	return nil
}

// owned loads the booking and checks identity against its submitter.
func (s *BookingService) owned(ctx context.Context, identity, id string) (model.Booking, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return model.Booking{}, err
		}
		return model.Booking{}, fmt.Errorf("reading booking: %w", err)
	}
	if current.UserID != identity {
		return model.Booking{}, repository.ErrForbidden
	}
	return current, nil
}

func (s *BookingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("calendar cache invalidation failed")
	}
}
