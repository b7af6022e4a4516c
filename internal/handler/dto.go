package handler

import (
	"time"

	"github.com/iliyamo/taskboard/internal/model"
)

// JSON shapes returned by the API.  Field names are camelCase to match
// the frontend.

type userPart struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar,omitempty"`
}

type projectResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	UserID      uint64    `json:"userId"`
	TaskCount   int       `json:"taskCount"`
	Count       countResp `json:"_count"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// countResp mirrors the relation counts the frontend reads as _count.
type countResp struct {
	Tasks int `json:"tasks"`
}

// projectDetailResp is a project together with its tasks.
type projectDetailResp struct {
	projectResp
	Tasks []taskResp `json:"tasks"`
}

type projectRef struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

type taskResp struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      string      `json:"status"`
	Priority    *string     `json:"priority"`
	DueDate     *time.Time  `json:"dueDate"`
	ProjectID   uint64      `json:"projectId"`
	Project     *projectRef `json:"project,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type statsResp struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

func toTaskResp(t *model.Task) taskResp {
	out := taskResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		out.Priority = &p
	}
	if t.Project != nil {
		out.Project = &projectRef{ID: t.Project.ID, Title: t.Project.Title}
	}
	return out
}

func toTaskList(ts []model.Task) []taskResp {
	out := make([]taskResp, 0, len(ts))
	for i := range ts {
		out = append(out, toTaskResp(&ts[i]))
	}
	return out
}

func toProjectResp(p *model.Project) projectResp {
	return projectResp{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		UserID:      p.OwnerID,
		TaskCount:   p.TaskCount,
		Count:       countResp{Tasks: p.TaskCount},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectDetail(p *model.Project) projectDetailResp {
	return projectDetailResp{projectResp: toProjectResp(p), Tasks: toTaskList(p.Tasks)}
}

func toProjectDetailList(ps []model.Project) []projectDetailResp {
	out := make([]projectDetailResp, 0, len(ps))
	for i := range ps {
		out = append(out, toProjectDetail(&ps[i]))
	}
	return out
}
