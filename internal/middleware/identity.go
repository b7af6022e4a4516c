package middleware

// identity.go holds the context keys written by JWTAuth and the helpers
// that read them back for handlers and the access log.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Keys under which JWTAuth stores the caller's identity.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// UserID returns the authenticated caller's id.  It reports false when the
// request did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextUserID).(uint64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// userLabel renders the caller for log lines; unauthenticated requests
// are "guest".
func userLabel(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
