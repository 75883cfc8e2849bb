package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/middleware"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
)

const maxOpBody = 1 << 20

// ListOps names the operations POST /v1/ops/:name accepts. GET /v1/ops
func (h *BookingHandler) ListOps(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"operations": service.Operations()})
}

// Op runs a named operation with the JSON body as its parameters.
// POST /v1/ops/:name
func (h *BookingHandler) Op(c echo.Context) error {
	op, err := service.ParseOperation(c.Param("name"))
	if err != nil {
		return respondError(c, err, "running the operation")
	}
	identity := middleware.IdentityFrom(c)
	if op.Mutates() && identity == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity token"})
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxOpBody))
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(raw) > 0 && !json.Valid(raw) {
		return badRequest(c, "request body must be JSON")
	}

	result, err := h.Svc.Dispatch(c.Request().Context(), op, identity, raw)
	if err != nil {
		return respondError(c, err, "running the operation")
	}
	return c.JSON(http.StatusOK, map[string]any{"operation": op, "result": result})
}
