package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
)

// Health loads one calendar year end to end so load balancers see store
// failures, not just a live process. GET /health?year=YYYY
func (h *CalendarHandler) Health(c echo.Context) error {
	year := time.Now().In(h.Svc.Location()).Year()
	if raw := strings.TrimSpace(c.QueryParam("year")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "year must be a number"})
		}
		year = n
	}
	if err := service.CheckYear(year); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
	}

	data, err := h.Svc.Year(c.Request().Context(), year)
	if err != nil {
		logging.FromContext(c.Request().Context()).WithError(err).Error("Health check failed")
		return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": "bookings could not be loaded"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"year":    year,
		"days":    len(data.Dates),
		"entries": data.Dates.Count(),
	})
}
