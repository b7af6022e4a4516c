package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger writes one structured line per request with method,
// route, status, duration_ms, request_id and user_id.  Server errors log
// at error, client errors at warn, everything else at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Resolve the handler error first so the committed status is
			// the one the client sees.
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}

			level := slog.LevelInfo
			if res.Status >= 500 {
				level = slog.LevelError
			} else if res.Status >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(req.Context(), level, "http_request",
				slog.String("method", req.Method),
				slog.String("route", routeLabel(c)),
				slog.Int("status", res.Status),
				slog.Float64("duration_ms", durationMs),
				slog.String("request_id", requestID),
				slog.String("user_id", userLabel(c)),
			)
			return nil
		}
	}
}

// routeLabel is the registered route pattern, so that /tasks/1 and
// /tasks/2 share a label.
func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}
