package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskboard/internal/service"
)

// TaskHandler serves tasks of the caller's projects.
type TaskHandler struct {
	Tasks   *service.TaskService
	Timeout time.Duration
}

func NewTaskHandler(tasks *service.TaskService, timeout time.Duration) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Timeout: timeout}
}

// taskReq is shared by create and update; absent fields stay nil.
type taskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	ProjectID   *uint64 `json:"projectId"`
}

// Create: POST /tasks
func (h *TaskHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in := service.TaskInput{
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.ProjectID != nil {
		in.ProjectID = *req.ProjectID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	t, err := h.Tasks.Create(ctx, uid, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toTaskResp(t))
}

// List: GET /tasks?projectId=
func (h *TaskHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, ok := optionalQueryID(c, "projectId")
	if !ok {
		return badRequest(c, "invalid projectId")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	list, err := h.Tasks.List(ctx, uid, projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTaskList(list))
}

// Stats: GET /tasks/stats?projectId=
func (h *TaskHandler) Stats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, ok := optionalQueryID(c, "projectId")
	if !ok {
		return badRequest(c, "invalid projectId")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	st, err := h.Tasks.Stats(ctx, uid, projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, statsResp{
		Total:      st.Total,
		Pending:    st.Pending,
		InProgress: st.InProgress,
		Completed:  st.Completed,
	})
}

// Get: GET /tasks/:id
func (h *TaskHandler) Get(c echo.Context) error {
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

	t, err := h.Tasks.Get(ctx, uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Update: PATCH /tasks/:id
func (h *TaskHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	t, err := h.Tasks.Update(ctx, uid, id, service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Delete: DELETE /tasks/:id, returning the removed task.
func (h *TaskHandler) Delete(c echo.Context) error {
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

	t, err := h.Tasks.Delete(ctx, uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}
