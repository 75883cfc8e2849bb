package repository

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// MemoryStore keeps bookings in process. It backs DB_DRIVER=memory and the
// service tests. Reads return copies.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]model.Booking
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string]model.Booking{}, now: time.Now}
}

func (s *MemoryStore) ListInRange(_ context.Context, startMs, endMs int64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Booking, 0)
	for _, b := range s.rows {
		if b.Date >= startMs && b.Date < endMs {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.rows[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return clone(b), nil
}

func (s *MemoryStore) Insert(_ context.Context, b model.Booking) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = newID()
	}
	if _, exists := s.rows[b.ID]; exists {
		return "", ErrConflict
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = s.now().UnixMilli()
	}
	s.rows[b.ID] = clone(b)
	return b.ID, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch model.BookingPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rows[id]
	if !ok {
		return ErrBookingNotFound
	}
	next := patch.Apply(cur)
	if reflect.DeepEqual(cur, next) {
		return ErrNoChange
	}
	s.rows[id] = next
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return ErrBookingNotFound
	}
	delete(s.rows, id)
	return nil
}

func clone(b model.Booking) model.Booking {
	if b.Extra != nil {
		extra := make(model.Extra, len(b.Extra))
		for k, v := range b.Extra {
			extra[k] = v
		}
		b.Extra = extra
	}
	return b
}
