package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/handler"
	"github.com/iliyamo/taskboard/internal/middleware"
)

// RegisterTasks registers the task endpoints.  Every route requires a
// valid session; ownership is resolved through the task's project.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, verifier middleware.TokenVerifier) {
	g := e.Group("/tasks", middleware.JWTAuth(verifier))

	g.POST("", t.Create)
	g.GET("", t.List)
	g.GET("/stats", t.Stats)
	g.GET("/:id", t.Get)
	g.PATCH("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}
