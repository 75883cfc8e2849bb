package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
	"github.com/iliyamo/theatre-booking-calendar/internal/sheet"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeICS  = "text/calendar; charset=utf-8"
)

// CalendarHandler serves the read side: year views, exports and the clash
// preview.
type CalendarHandler struct {
	Svc *service.BookingService
}

func NewCalendarHandler(svc *service.BookingService) *CalendarHandler {
	return &CalendarHandler{Svc: svc}
}

func yearParam(c echo.Context) (int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, validation.FieldError("year", "must be a number")
	}
	return year, service.CheckYear(year)
}

// GetYear returns every day of the year with its bookings.
// GET /v1/calendar/:year
func (h *CalendarHandler) GetYear(c echo.Context) error {
	year, err := yearParam(c)
	if err != nil {
		return respondError(c, err, "loading the calendar")
	}
	view, err := service.NewCalendarState(h.Svc, year).Refresh(c.Request().Context())
	if err != nil {
		return respondError(c, err, "loading the calendar")
	}
	return c.JSON(http.StatusOK, view)
}

// GetGroups returns the year as date-sorted sections of rows.
// GET /v1/calendar/:year/groups
func (h *CalendarHandler) GetGroups(c echo.Context) error {
	year, err := yearParam(c)
	if err != nil {
		return respondError(c, err, "loading the calendar")
	}
	groups, err := h.Svc.Groups(c.Request().Context(), year)
	if err != nil {
		return respondError(c, err, "loading the calendar")
	}
	return c.JSON(http.StatusOK, groups)
}

// Export downloads the year as csv, xlsx or an iCalendar feed.
// GET /v1/calendar/:year/export?format=csv|xlsx|ics
func (h *CalendarHandler) Export(c echo.Context) error {
	year, err := yearParam(c)
	if err != nil {
		return respondError(c, err, "exporting bookings")
	}
	ctx := c.Request().Context()
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = sheet.FormatCSV
	}
	filename := fmt.Sprintf("bookings-%d.%s", year, format)

	var (
		body bytes.Buffer
		mime string
	)
	switch format {
	case "ics":
		doc, err := h.Svc.ExportFeed(ctx, year)
		if err != nil {
			return respondError(c, err, "exporting bookings")
		}
		body.WriteString(doc)
		mime = mimeICS
	case sheet.FormatCSV, sheet.FormatXLSX:
		table, err := h.Svc.ExportTable(ctx, year)
		if err != nil {
			return respondError(c, err, "exporting bookings")
		}
		write := sheet.WriteCSV
		mime = mimeCSV
		if format == sheet.FormatXLSX {
			write, mime = sheet.WriteXLSX, mimeXLSX
		}
		if err := write(&body, table); err != nil {
			return respondError(c, err, "exporting bookings")
		}
	default:
		return badRequest(c, "format must be csv, xlsx or ics")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, mime, body.Bytes())
}

// Clash shows the bookings on one date and who would be notified, without
// sending anything. GET /v1/clash?date=dd/MM/yyyy
func (h *CalendarHandler) Clash(c echo.Context) error {
	day, err := model.ParseDateKey(c.QueryParam("date"), h.Svc.Location())
	if err != nil {
		return respondError(c, validation.FieldError("date", "must be a dd/mm/yyyy date"), "checking clashes")
	}
	view, err := h.Svc.ClashOn(c.Request().Context(), day)
	if err != nil {
		return respondError(c, err, "checking clashes")
	}
	return c.JSON(http.StatusOK, view)
}
