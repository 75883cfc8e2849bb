package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

const bookingColumns = `id, date, day, venue, ukt_venue, affiliate_venue, other_venue,
	venue_is_tba, title_of_show, show_title_is_tba, p, is_season_gala, is_opera_dance,
	producer, press_contact, user_id, date_bkd, time_stamp, created_at, extra`

// BookingRepo persists bookings in a SQL database through sqlx. It works
// with both MySQL and Postgres; queries are written with ? and rebound.
type BookingRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db, now: time.Now}
}

// ListInRange returns bookings with startMs <= date < endMs ordered by date,
// creation time and id.
func (r *BookingRepo) ListInRange(ctx context.Context, startMs, endMs int64) ([]model.Booking, error) {
	q := r.db.Rebind(`SELECT ` + bookingColumns + ` FROM bookings
		WHERE date >= ? AND date < ?
		ORDER BY date, created_at, id`)
	var out []model.Booking
	if err := r.db.SelectContext(ctx, &out, q, startMs, endMs); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// Get returns one booking or ErrBookingNotFound.
func (r *BookingRepo) Get(ctx context.Context, id string) (model.Booking, error) {
	q := r.db.Rebind(`SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`)
	var b model.Booking
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	return b, nil
}

// Insert stores b and returns its id. A missing id is generated and a
// missing creation time is set to now. An id already in the table yields
// ErrConflict.
func (r *BookingRepo) Insert(ctx context.Context, b model.Booking) (string, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = r.now().UnixMilli()
	}
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (
		:id, :date, :day, :venue, :ukt_venue, :affiliate_venue, :other_venue,
		:venue_is_tba, :title_of_show, :show_title_is_tba, :p, :is_season_gala, :is_opera_dance,
		:producer, :press_contact, :user_id, :date_bkd, :time_stamp, :created_at, :extra)`
	if _, err := r.db.NamedExecContext(ctx, q, b); err != nil {
		if isDuplicateKey(err) {
			return "", fmt.Errorf("insert booking %s: %w", b.ID, ErrConflict)
		}
		return "", fmt.Errorf("insert booking: %w", err)
	}
	return b.ID, nil
}

// Update applies patch to the row in a single statement. It returns
// ErrBookingNotFound for an unknown id and ErrNoChange when nothing differs.
func (r *BookingRepo) Update(ctx context.Context, id string, patch model.BookingPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrNoChange
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	diffs := make([]string, 0, len(names))
	args := make([]any, 0, 2*len(names)+1)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, cols[name])
	}
	args = append(args, id)
	for _, name := range names {
		diffs = append(diffs, name+" <> ?")
		args = append(args, cols[name])
	}

	// Only touch the row when at least one column differs.
	q := r.db.Rebind(`UPDATE bookings SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND (` + strings.Join(diffs, " OR ") + `)`)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Zero rows: either the id is unknown or nothing differed.
	var one int
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(`SELECT 1 FROM bookings WHERE id = ?`), id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	return ErrNoChange
}

// Delete removes the row or returns ErrBookingNotFound.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM bookings WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
