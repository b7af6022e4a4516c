package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/service"
)

// ProjectHandler serves the caller's projects.
type ProjectHandler struct {
	Projects *service.ProjectService
	Timeout  time.Duration
}

func NewProjectHandler(projects *service.ProjectService, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Timeout: timeout}
}

type projectReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Create: POST /projects
func (h *ProjectHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in := service.ProjectInput{Description: req.Description}
	if req.Title != nil {
		in.Title = *req.Title
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, err := h.Projects.Create(ctx, uid, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toProjectDetail(p))
}

// List: GET /projects
func (h *ProjectHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	list, err := h.Projects.List(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectDetailList(list))
}

// Get: GET /projects/:id
func (h *ProjectHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, err := h.Projects.Get(ctx, uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectDetail(p))
}

// Update: PATCH /projects/:id
func (h *ProjectHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, err := h.Projects.Update(ctx, uid, id, service.ProjectPatch{Title: req.Title, Description: req.Description})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectDetail(p))
}

// Delete: DELETE /projects/:id, returning the removed project.
func (h *ProjectHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, err := h.Projects.Delete(ctx, uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResp(p))
}
