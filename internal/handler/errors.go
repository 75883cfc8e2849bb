package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/repository"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

// respondError maps service errors onto status codes. Anything unexpected is
// logged and answered with a generic message naming the action.
func respondError(c echo.Context, err error, action string) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "only the submitter can change this booking"})
	case errors.Is(err, service.ErrUnknownOperation):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	logging.FromContext(c.Request().Context()).WithError(err).Errorf("Failed %s", action)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": fmt.Sprintf("there was an error %s, please try again", action),
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
