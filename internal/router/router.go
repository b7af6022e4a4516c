package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/taskboard/internal/handler"
	"github.com/iliyamo/taskboard/internal/metrics"
	"github.com/iliyamo/taskboard/internal/middleware"
)

// Setup installs the middleware shared by every route: panic recovery,
// request ids, CORS for the frontend origin, the access log and request
// metrics.
func Setup(e *echo.Echo, logger *slog.Logger, rec metrics.Recorder, frontendURL string) {
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{frontendURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics(rec))
}

// RegisterRoutes registers the unauthenticated operational endpoints:
// liveness, readiness and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, db *sql.DB, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(gatherer)))
}

// RegisterAuth registers the authentication routes.  Registration, login
// and the OAuth handshake are public; /auth/me requires a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OAuthHandler, verifier middleware.TokenVerifier) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, middleware.JWTAuth(verifier))

	g.GET("/providers", o.List)
	g.GET("/:provider", o.Redirect)
	g.GET("/:provider/callback", o.Callback)
}
