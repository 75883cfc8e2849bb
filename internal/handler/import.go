package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/middleware"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
)

const importField = "files"

// Import stores the rows of one or more uploaded CSV/XLSX files and returns
// a report per file. A broken file does not stop the others.
// POST /v1/bookings/import
func (h *BookingHandler) Import(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "expected a multipart upload")
	}
	files := form.File[importField]
	if len(files) == 0 {
		return badRequest(c, "no files uploaded")
	}

	ctx := c.Request().Context()
	identity := middleware.IdentityFrom(c)
	reports := make([]service.ImportReport, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			reports = append(reports, service.ImportReport{File: fh.Filename, Error: "file could not be read"})
			continue
		}
		reports = append(reports, h.Svc.Import(ctx, identity, fh.Filename, f))
		f.Close()
	}
	return c.JSON(http.StatusOK, map[string]any{"reports": reports})
}
