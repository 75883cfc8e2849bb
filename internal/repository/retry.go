package repository

import (
	"context"
	"errors"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/retry"
)

// RetryingStore retries transient store failures according to the
// configured policy. Lookup misses, ownership failures, conflicts and
// no-op updates are returned immediately.
type RetryingStore struct {
	next   Store
	policy config.RetryConfig
}

func NewRetryingStore(next Store, policy config.RetryConfig) *RetryingStore {
	return &RetryingStore{next: next, policy: policy}
}

func (s *RetryingStore) ListInRange(ctx context.Context, startMs, endMs int64) ([]model.Booking, error) {
	var out []model.Booking
	err := s.do(ctx, func() error {
		var err error
		out, err = s.next.ListInRange(ctx, startMs, endMs)
		return err
	})
	return out, err
}

func (s *RetryingStore) Get(ctx context.Context, id string) (model.Booking, error) {
	var out model.Booking
	err := s.do(ctx, func() error {
		var err error
		out, err = s.next.Get(ctx, id)
		return err
	})
	return out, err
}

// Insert fixes the id before the first attempt so a retried insert cannot
// create a second row. A conflict on a retry whose stored row matches b
// means an earlier attempt committed and lost its reply, and counts as
// success.
func (s *RetryingStore) Insert(ctx context.Context, b model.Booking) (string, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	var id string
	attempt := 0
	err := s.do(ctx, func() error {
		attempt++
		var err error
		id, err = s.next.Insert(ctx, b)
		if attempt > 1 && errors.Is(err, ErrConflict) && s.landed(ctx, b) {
			id = b.ID
			return nil
		}
		return err
	})
	return id, err
}

// landed reports whether the row stored under b.ID is b.
func (s *RetryingStore) landed(ctx context.Context, b model.Booking) bool {
	got, err := s.next.Get(ctx, b.ID)
	if err != nil {
		return false
	}
	return got.UserID == b.UserID && got.Date == b.Date && got.TimeStamp == b.TimeStamp
}

func (s *RetryingStore) Update(ctx context.Context, id string, patch model.BookingPatch) error {
	return s.do(ctx, func() error { return s.next.Update(ctx, id, patch) })
}

func (s *RetryingStore) Delete(ctx context.Context, id string) error {
	return s.do(ctx, func() error { return s.next.Delete(ctx, id) })
}

func (s *RetryingStore) do(ctx context.Context, op func() error) error {
	return retry.Do(ctx, s.policy, func() error {
		err := op()
		if isPermanent(err) {
			return retry.Permanent(err)
		}
		return err
	})
}

func isPermanent(err error) bool {
	for _, target := range []error{ErrBookingNotFound, ErrForbidden, ErrConflict, ErrNoChange, context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
