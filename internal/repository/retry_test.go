package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/repository"
)

// flakyStore fails the first `failures` calls with a transient error. The
// first `lostAcks` inserts are stored but still reported as failed.
type flakyStore struct {
	*repository.MemoryStore

	lock      sync.Mutex
	failures  int
	lostAcks  int
	calls     int
	insertIDs []string
}

func (f *flakyStore) fail() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return nil
}

func (f *flakyStore) ListInRange(ctx context.Context, startMs, endMs int64) ([]model.Booking, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.MemoryStore.ListInRange(ctx, startMs, endMs)
}

func (f *flakyStore) Insert(ctx context.Context, b model.Booking) (string, error) {
	f.lock.Lock()
	f.insertIDs = append(f.insertIDs, b.ID)
	f.lock.Unlock()
	if err := f.fail(); err != nil {
		return "", err
	}
	id, err := f.MemoryStore.Insert(ctx, b)
	f.lock.Lock()
	defer f.lock.Unlock()
	if err == nil && f.lostAcks > 0 {
		f.lostAcks--
		return "", errors.New("connection reset")
	}
	return id, err
}

func (f *flakyStore) Get(ctx context.Context, id string) (model.Booking, error) {
	if err := f.fail(); err != nil {
		return model.Booking{}, err
	}
	return f.MemoryStore.Get(ctx, id)
}

func fastPolicy(attempts int) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:     attempts,
		Strategy:        config.RetryConstant,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Multiplier:      1,
	}
}

func TestRetryingStore_Contract(t *testing.T) {
	exerciseStore(t, repository.NewRetryingStore(repository.NewMemoryStore(), fastPolicy(3)))
}

func TestRetryingStore_RetriesTransientFailures(t *testing.T) {
	inner := &flakyStore{MemoryStore: repository.NewMemoryStore(), failures: 2}
	store := repository.NewRetryingStore(inner, fastPolicy(3))

	out, err := store.ListInRange(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingStore_GivesUp(t *testing.T) {
	inner := &flakyStore{MemoryStore: repository.NewMemoryStore(), failures: 10}
	store := repository.NewRetryingStore(inner, fastPolicy(2))

	_, err := store.ListInRange(context.Background(), 0, 10)
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingStore_NotFoundIsPermanent(t *testing.T) {
	inner := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	store := repository.NewRetryingStore(inner, fastPolicy(5))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingStore_InsertKeepsIDAcrossAttempts(t *testing.T) {
	inner := &flakyStore{MemoryStore: repository.NewMemoryStore(), failures: 1}
	store := repository.NewRetryingStore(inner, fastPolicy(3))

	id, err := store.Insert(context.Background(), model.Booking{Date: 1, Producer: "A", PressContact: "a"})
	require.NoError(t, err)

	require.Len(t, inner.insertIDs, 2)
	assert.Equal(t, id, inner.insertIDs[0])
	assert.Equal(t, id, inner.insertIDs[1])
}

func TestRetryingStore_InsertCommittedBeforeFailure(t *testing.T) {
	inner := &flakyStore{MemoryStore: repository.NewMemoryStore(), lostAcks: 1}
	store := repository.NewRetryingStore(inner, fastPolicy(3))
	ctx := context.Background()

	b := model.Booking{Date: 1, Producer: "A", PressContact: "a", UserID: "u", TimeStamp: 5}
	id, err := store.Insert(ctx, b)
	require.NoError(t, err)
	require.Len(t, inner.insertIDs, 2)
	assert.Equal(t, inner.insertIDs[0], id)

	rows, err := inner.MemoryStore.ListInRange(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
}

func TestRetryingStore_InsertConflictIsPermanent(t *testing.T) {
	inner := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	store := repository.NewRetryingStore(inner, fastPolicy(3))
	ctx := context.Background()

	_, err := inner.MemoryStore.Insert(ctx, model.Booking{ID: "taken", Date: 1, UserID: "other"})
	require.NoError(t, err)

	_, err = store.Insert(ctx, model.Booking{ID: "taken", Date: 1, UserID: "u"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, inner.calls)
}
