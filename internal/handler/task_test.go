package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) createProject(t *testing.T, token, title string) projectJSON {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/projects", token, map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p projectJSON
	decode(t, rec, &p)
	return p
}

func TestTaskEndToEndExample(t *testing.T) {
	h := newHarness(t)
	tok := h.signup(t, "ann@x.com")
	p := h.createProject(t, tok, "Launch")

	rec := h.do(t, http.MethodPost, "/tasks", tok, map[string]any{"title": "Draft plan", "projectId": p.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task taskJSON
	decode(t, rec, &task)
	assert.Equal(t, "pending", task.Status)
	assert.Nil(t, task.Priority)
	assert.Equal(t, p.ID, task.ProjectID)
	require.NotNil(t, task.Project)
	assert.Equal(t, "Launch", task.Project.Title)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/tasks/stats?projectId=%d", p.ID), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1,"pending":1,"inProgress":0,"completed":0}`, rec.Body.String())

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", p.ID), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail projectJSON
	decode(t, rec, &detail)
	assert.Equal(t, 1, detail.TaskCount)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "Draft plan", detail.Tasks[0].Title)
}

func TestTaskUpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	tok := h.signup(t, "ann@x.com")
	p := h.createProject(t, tok, "P")

	rec := h.do(t, http.MethodPost, "/tasks", tok, map[string]any{
		"title": "T", "projectId": p.ID, "priority": "medium", "dueDate": "2030-05-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task taskJSON
	decode(t, rec, &task)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2030-05-01T00:00:00Z", *task.DueDate)
	path := fmt.Sprintf("/tasks/%d", task.ID)

	rec = h.do(t, http.MethodPatch, path, tok, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &task)
	assert.Equal(t, "completed", task.Status)
	assert.Equal(t, "medium", *task.Priority)

	rec = h.do(t, http.MethodPatch, path, tok, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/tasks/stats", tok, nil)
	assert.JSONEq(t, `{"total":1,"pending":0,"inProgress":0,"completed":1}`, rec.Body.String())

	rec = h.do(t, http.MethodDelete, path, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, path, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskOwnership(t *testing.T) {
	h := newHarness(t)
	a := h.signup(t, "a@x.com")
	b := h.signup(t, "b@x.com")
	pa := h.createProject(t, a, "A")
	pb := h.createProject(t, b, "B")

	rec := h.do(t, http.MethodPost, "/tasks", a, map[string]any{"title": "a-task", "projectId": pa.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task taskJSON
	decode(t, rec, &task)
	path := fmt.Sprintf("/tasks/%d", task.ID)

	rec = h.do(t, http.MethodPost, "/tasks", b, map[string]any{"title": "sneaky", "projectId": pa.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodGet, path, b, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodPatch, path, b, map[string]any{"title": "mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodDelete, path, b, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodPatch, path, a, map[string]any{"projectId": pb.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/tasks?projectId=%d", pa.ID), b, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/tasks", a, nil)
	var list []taskJSON
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "a-task", list[0].Title)

	rec = h.do(t, http.MethodGet, "/tasks?projectId=abc", a, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskCreateValidation(t *testing.T) {
	h := newHarness(t)
	tok := h.signup(t, "ann@x.com")
	p := h.createProject(t, tok, "P")

	for name, body := range map[string]map[string]any{
		"no title":     {"projectId": p.ID},
		"no project":   {"title": "T"},
		"bad priority": {"title": "T", "projectId": p.ID, "priority": "urgent"},
		"bad due date": {"title": "T", "projectId": p.ID, "dueDate": "tomorrow"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/tasks", tok, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := h.do(t, http.MethodPost, "/tasks", tok, map[string]any{"title": "T", "projectId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
