// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/handler"
	"github.com/iliyamo/theatre-booking-calendar/internal/middleware"
)

// Options carries the middleware shared across route groups. Cache and
// RateLimit may be nil.
type Options struct {
	IdentitySecret string
	Cache          *middleware.ResponseCache
	RateLimit      echo.MiddlewareFunc
}

// RegisterRoutes registers the health check and every /v1 route.
func RegisterRoutes(e *echo.Echo, b *handler.BookingHandler, cal *handler.CalendarHandler, opts Options) {
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Identity(opts.IdentitySecret))

	e.GET("/health", cal.Health)

	RegisterCalendar(e, cal, opts)
	RegisterBookings(e, b, opts)
}

// RegisterCalendar registers the read-only calendar views. Year views and
// exports are served through the response cache.
func RegisterCalendar(e *echo.Echo, cal *handler.CalendarHandler, opts Options) {
	cached := opts.Cache.Middleware()
	e.GET("/v1/calendar/:year", cal.GetYear, cached)
	e.GET("/v1/calendar/:year/groups", cal.GetGroups, cached)
	e.GET("/v1/calendar/:year/export", cal.Export, cached)

	e.GET("/v1/clash", cal.Clash)
}

// RegisterBookings registers booking reads, writes, imports and named
// operations. Writes require an identity and are rate limited.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, opts Options) {
	e.GET("/v1/bookings", b.List)
	e.GET("/v1/bookings/:id", b.Get)
	e.GET("/v1/ops", b.ListOps)

	var limited []echo.MiddlewareFunc
	if opts.RateLimit != nil {
		limited = append(limited, opts.RateLimit)
	}
	writes := append([]echo.MiddlewareFunc{middleware.RequireIdentity()}, limited...)

	e.POST("/v1/bookings", b.Create, writes...)
	e.POST("/v1/bookings/import", b.Import, writes...)
	e.PATCH("/v1/bookings/:id", b.Update, writes...)
	e.PUT("/v1/bookings/:id", b.Update, writes...)
	e.DELETE("/v1/bookings/:id", b.Delete, writes...)

	// Read operations are open; Op rejects anonymous writes itself.
	e.POST("/v1/ops/:name", b.Op, limited...)
}
