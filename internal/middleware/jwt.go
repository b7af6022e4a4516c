package middleware // package middleware contains reusable echo middleware

import (
	"net/http" // HTTP status codes for responses
	"strings"  // prefix checking and trimming of the Authorization header

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/taskboard/internal/utils" // Identity proven by a verified token
)

// TokenVerifier validates a raw session token.  *utils.TokenIssuer
// satisfies it.
type TokenVerifier interface {
	Verify(raw string) (utils.Identity, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and injects the verified user id and email into the request context.
// Protected handlers read them back with UserID; they never trust an id
// supplied in the request body or path.
func JWTAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			// Expired, forged and malformed tokens all get the same answer.
			id, err := verifier.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextUserID, id.UserID)
			c.Set(ContextEmail, id.Email)
			return next(c)
		}
	}
}
