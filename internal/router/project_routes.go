package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/handler"
	"github.com/iliyamo/taskboard/internal/middleware"
)

// RegisterProjects registers the project endpoints.  Every route requires
// a valid session; ownership is checked by the service.
func RegisterProjects(e *echo.Echo, p *handler.ProjectHandler, verifier middleware.TokenVerifier) {
	g := e.Group("/projects", middleware.JWTAuth(verifier))

	g.POST("", p.Create)
	g.GET("", p.List)
	g.GET("/:id", p.Get)
	g.PATCH("/:id", p.Update)
	g.DELETE("/:id", p.Delete)
}
