package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/clash"
	"github.com/iliyamo/theatre-booking-calendar/internal/middleware"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

// BookingHandler serves booking reads and writes, spreadsheet imports and
// the named operations.
type BookingHandler struct {
	Svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type mutationResponse struct {
	Booking service.BookingOutput `json:"booking"`
	Clash   clash.Result          `json:"clash"`
}

func (h *BookingHandler) mutation(m service.Mutation) mutationResponse {
	return mutationResponse{Booking: service.NewBookingOutput(m.Booking, h.Svc.Location()), Clash: m.Clash}
}

// dateRange resolves ?from and ?to (dd/MM/yyyy, both inclusive) into a
// half-open millisecond range. Missing bounds default to the current year.
func (h *BookingHandler) dateRange(c echo.Context) (int64, int64, error) {
	loc := h.Svc.Location()
	start, end := model.YearBounds(time.Now().In(loc).Year(), loc)

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		t, err := model.ParseDateKey(raw, loc)
		if err != nil {
			return 0, 0, validation.FieldError("from", "must be a dd/mm/yyyy date")
		}
		start = t.UnixMilli()
	}
	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		t, err := model.ParseDateKey(raw, loc)
		if err != nil {
			return 0, 0, validation.FieldError("to", "must be a dd/mm/yyyy date")
		}
		end = t.AddDate(0, 0, 1).UnixMilli()
	}
	if end <= start {
		return 0, 0, validation.FieldError("to", "must not be before from")
	}
	return start, end, nil
}

// List returns the bookings between two dates.
// GET /v1/bookings?from=dd/MM/yyyy&to=dd/MM/yyyy
func (h *BookingHandler) List(c echo.Context) error {
	start, end, err := h.dateRange(c)
	if err != nil {
		return respondError(c, err, "loading bookings")
	}
	bookings, err := h.Svc.List(c.Request().Context(), start, end)
	if err != nil {
		return respondError(c, err, "loading bookings")
	}
	out := make([]service.BookingOutput, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, service.NewBookingOutput(b, h.Svc.Location()))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one booking. GET /v1/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "loading the booking")
	}
	return c.JSON(http.StatusOK, service.NewBookingOutput(b, h.Svc.Location()))
}

// Create stores a booking for the caller and reports any clash on its day.
// POST /v1/bookings
func (h *BookingHandler) Create(c echo.Context) error {
	var in service.BookingInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	b, err := in.ToBooking(h.Svc.Location())
	if err != nil {
		return respondError(c, err, "saving the booking")
	}
	m, err := h.Svc.Create(c.Request().Context(), middleware.IdentityFrom(c), b)
	if err != nil {
		return respondError(c, err, "saving the booking")
	}
	return c.JSON(http.StatusCreated, h.mutation(m))
}

// Update applies a partial edit. Only the submitter may edit.
// PATCH|PUT /v1/bookings/:id
func (h *BookingHandler) Update(c echo.Context) error {
	var in service.PatchInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	patch, err := in.ToPatch(h.Svc.Location())
	if err != nil {
		return respondError(c, err, "updating the booking")
	}
	m, err := h.Svc.Edit(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), patch)
	if err != nil {
		return respondError(c, err, "updating the booking")
	}
	return c.JSON(http.StatusOK, h.mutation(m))
}

// Delete removes a booking. Only the submitter may delete.
// DELETE /v1/bookings/:id
func (h *BookingHandler) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return respondError(c, err, "deleting the booking")
	}
	return c.NoContent(http.StatusNoContent)
}
