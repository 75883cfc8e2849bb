package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
)

// RequestLogger attaches a correlation id and a logrus entry to the request
// context and logs each request when it completes.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			cid := req.Header.Get(logging.HeaderCorrelationID)
			if cid == "" {
				cid = logging.NewCorrelationID()
			}
			c.Response().Header().Set(logging.HeaderCorrelationID, cid)

			entry := logrus.WithField("correlation_id", cid)
			ctx := logging.ContextWithCorrelationID(req.Context(), cid)
			ctx = logging.ToContext(ctx, entry)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry.WithFields(logrus.Fields{
				"method":   req.Method,
				"path":     req.URL.Path,
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
			}).Info("Handled request")
			return nil
		}
	}
}
