package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

// Operation names one capability a client may invoke by name.
type Operation string

const (
	OpListYear      Operation = "listYear"
	OpListGroups    Operation = "listGroups"
	OpGetBooking    Operation = "getBooking"
	OpCreateBooking Operation = "createBooking"
	OpEditBooking   Operation = "editBooking"
	OpDeleteBooking Operation = "deleteBooking"
	OpCheckClash    Operation = "checkClash"
	OpExportTable   Operation = "exportTable"
)

// Mutates reports whether op writes bookings and so needs an identity.
func (op Operation) Mutates() bool {
	switch op {
	case OpCreateBooking, OpEditBooking, OpDeleteBooking:
		return true
	}
	return false
}

// ErrUnknownOperation is returned for names outside the operation table.
var ErrUnknownOperation = errors.New("unknown operation")

type opHandler func(ctx context.Context, s *BookingService, identity string, params json.RawMessage) (any, error)

// typed decodes the raw params into P before calling fn.
func typed[P any](fn func(ctx context.Context, s *BookingService, identity string, p P) (any, error)) opHandler {
	return func(ctx context.Context, s *BookingService, identity string, raw json.RawMessage) (any, error) {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, validation.FieldError("params", "must match the operation's parameters")
			}
		}
		return fn(ctx, s, identity, p)
	}
}

type yearParams struct {
	Year int `json:"year"`
}

type idParams struct {
	ID string `json:"id"`
}

type editParams struct {
	ID    string     `json:"id"`
	Patch PatchInput `json:"patch"`
}

type clashParams struct {
	Date string `json:"date"`
}

var operations = map[Operation]opHandler{
	OpListYear: typed(func(ctx context.Context, s *BookingService, _ string, p yearParams) (any, error) {
		return NewCalendarState(s, s.yearOrCurrent(p.Year)).Refresh(ctx)
	}),
	OpListGroups: typed(func(ctx context.Context, s *BookingService, _ string, p yearParams) (any, error) {
		return s.Groups(ctx, s.yearOrCurrent(p.Year))
	}),
	OpGetBooking: typed(func(ctx context.Context, s *BookingService, _ string, p idParams) (any, error) {
		if p.ID == "" {
			return nil, validation.FieldError("id", "is required")
		}
		b, err := s.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return NewBookingOutput(b, s.loc), nil
	}),
	OpCreateBooking: typed(func(ctx context.Context, s *BookingService, identity string, p BookingInput) (any, error) {
		b, err := p.ToBooking(s.loc)
		if err != nil {
			return nil, err
		}
		return s.Create(ctx, identity, b)
	}),
	OpEditBooking: typed(func(ctx context.Context, s *BookingService, identity string, p editParams) (any, error) {
		if p.ID == "" {
			return nil, validation.FieldError("id", "is required")
		}
		patch, err := p.Patch.ToPatch(s.loc)
		if err != nil {
			return nil, err
		}
		return s.Edit(ctx, identity, p.ID, patch)
	}),
	OpDeleteBooking: typed(func(ctx context.Context, s *BookingService, identity string, p idParams) (any, error) {
		if p.ID == "" {
			return nil, validation.FieldError("id", "is required")
		}
		if err := s.Delete(ctx, identity, p.ID); err != nil {
			return nil, err
		}
		return map[string]string{"deleted": p.ID}, nil
	}),
	OpCheckClash: typed(func(ctx context.Context, s *BookingService, _ string, p clashParams) (any, error) {
		day, err := model.ParseDateKey(strings.TrimSpace(p.Date), s.loc)
		if err != nil {
			return nil, validation.FieldError("date", "must be a dd/mm/yyyy date")
		}
		return s.ClashOn(ctx, day)
	}),
	OpExportTable: typed(func(ctx context.Context, s *BookingService, _ string, p yearParams) (any, error) {
		return s.ExportTable(ctx, s.yearOrCurrent(p.Year))
	}),
}

// ParseOperation resolves a name against the operation table.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	if _, ok := operations[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return op, nil
}

// Operations lists the available operation names.
func Operations() []Operation {
	out := make([]Operation, 0, len(operations))
	for op := range operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch runs op with JSON params on behalf of identity.
func (s *BookingService) Dispatch(ctx context.Context, op Operation, identity string, params json.RawMessage) (any, error) {
	h, ok := operations[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return h(ctx, s, identity, params)
}

func (s *BookingService) yearOrCurrent(year int) int {
	if year == 0 {
		return s.now().In(s.loc).Year()
	}
	return year
}
