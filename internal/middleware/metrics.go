package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/metrics"
)

// Metrics observes every request's status and latency, labelled by route
// pattern.
func Metrics(rec metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			rec.ObserveHTTPRequest(c.Request().Method, routeLabel(c), c.Response().Status, time.Since(start))
			return nil
		}
	}
}
