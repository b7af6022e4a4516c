package handler // package handler defines the HTTP handlers of the API

import (
	"errors"   // errors maps service sentinels to status codes
	"log/slog" // slog records unexpected failures
	"net/http" // net/http provides status codes
	"strconv"  // strconv parses numeric path and query parameters
	"strings"  // strings trims raw parameters

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/taskboard/internal/middleware" // middleware exposes the verified caller id
	"github.com/iliyamo/taskboard/internal/service"    // service defines the error taxonomy
)

var errNoCaller = errors.New("invalid user_id in context")

// getUserID returns the caller id stored by the JWT guard.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errNoCaller
	}
	return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// optionalQueryID reads an optional positive numeric query parameter.  An
// absent or empty value yields nil.
func optionalQueryID(c echo.Context, name string) (*uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	return &id, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// respondError maps a service error to its status and message.  Anything
// outside the taxonomy is logged and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrDuplicateEmail):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Email already registered"})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	req := c.Request()
	slog.ErrorContext(req.Context(), "request failed",
		slog.String("method", req.Method),
		slog.String("route", c.Path()),
		slog.String("error", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
