package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/taskboard/internal/model"
	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/repository"
)

// TaskStore persists tasks.  Ownership is always read through the joined
// project.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetWithProject(ctx context.Context, id uint64) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uint64, projectID *uint64) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id uint64) error
	Stats(ctx context.Context, ownerID uint64, projectID *uint64) (model.TaskStats, error)
}

// ProjectGetter fetches a task's parent project.
type ProjectGetter interface {
	GetByID(ctx context.Context, id uint64) (*model.Project, error)
}

// TaskInput is the payload for creating a task.  Optional values arrive
// as raw strings and are validated by the service.
type TaskInput struct {
	Title       string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	ProjectID   uint64
}

// TaskPatch lists the fields to change; nil fields are left untouched.  An
// empty Description, Priority or DueDate clears the field.  A new ProjectID
// must name another project owned by the caller.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	ProjectID   *uint64
}

// TaskService implements ownership-checked task operations.
type TaskService struct {
	tasks    TaskStore
	projects ProjectGetter
	events   queue.Publisher
}

func NewTaskService(tasks TaskStore, projects ProjectGetter, events queue.Publisher) *TaskService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &TaskService{tasks: tasks, projects: projects, events: events}
}

func parseStatus(s string) (model.TaskStatus, error) {
	st := model.TaskStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: status must be one of pending, in_progress, completed", ErrValidation)
	}
	return st, nil
}

// parsePriority validates a priority.  An empty string leaves it unset.
func parsePriority(s string) (*model.TaskPriority, error) {
	if s == "" {
		return nil, nil
	}
	p := model.TaskPriority(s)
	if !p.Valid() {
		return nil, fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
	}
	return &p, nil
}

// parseDueDate accepts an RFC 3339 timestamp or a calendar date.  An empty
// string clears the due date.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: dueDate must be an ISO 8601 date", ErrValidation)
}

// ownedProject fetches a project and checks that callerID owns it.
func (s *TaskService) ownedProject(ctx context.Context, callerID, projectID uint64) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return p, nil
}

// owned fetches a task with its project and checks the project's owner.
func (s *TaskService) owned(ctx context.Context, callerID, id uint64) (*model.Task, error) {
	t, err := s.tasks.GetWithProject(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t.Project == nil || t.Project.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return t, nil
}

// Create adds a task to a project the caller owns.  Status defaults to
// pending; priority stays unset unless given.
func (s *TaskService) Create(ctx context.Context, callerID uint64, in TaskInput) (*model.Task, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.ProjectID == 0 {
		return nil, fmt.Errorf("%w: projectId is required", ErrValidation)
	}
	t := &model.Task{Title: title, Description: in.Description, Status: model.TaskPending, ProjectID: in.ProjectID}
	if in.Status != nil {
		if t.Status, err = parseStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.Priority != nil {
		if t.Priority, err = parsePriority(*in.Priority); err != nil {
			return nil, err
		}
	}
	if in.DueDate != nil {
		if t.DueDate, err = parseDueDate(*in.DueDate); err != nil {
			return nil, err
		}
	}

	p, err := s.ownedProject(ctx, callerID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	t.Project = p

	publish(ctx, s.events, queue.ActivityEvent{
		Type: queue.TaskCreated, UserID: callerID, ProjectID: p.ID, TaskID: t.ID,
		Title: t.Title, Status: string(t.Status),
	})
	return t, nil
}

// List returns the caller's tasks, optionally for one project.  The owner
// condition is applied by the query, so a foreign project id yields an
// empty list.
func (s *TaskService) List(ctx context.Context, callerID uint64, projectID *uint64) ([]model.Task, error) {
	list, err := s.tasks.ListByOwner(ctx, callerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// Get returns one of the caller's tasks with its project.
func (s *TaskService) Get(ctx context.Context, callerID, id uint64) (*model.Task, error) {
	return s.owned(ctx, callerID, id)
}

// Update applies patch to one of the caller's tasks.
func (s *TaskService) Update(ctx context.Context, callerID, id uint64, patch TaskPatch) (*model.Task, error) {
	t, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	prevStatus := t.Status

	if patch.Title != nil {
		if t.Title, err = requireTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		t.Description = optional(*patch.Description)
	}
	if patch.Status != nil {
		if t.Status, err = parseStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.Priority != nil {
		if t.Priority, err = parsePriority(*patch.Priority); err != nil {
			return nil, err
		}
	}
	if patch.DueDate != nil {
		if t.DueDate, err = parseDueDate(*patch.DueDate); err != nil {
			return nil, err
		}
	}
	if patch.ProjectID != nil && *patch.ProjectID != t.ProjectID {
		target, err := s.ownedProject(ctx, callerID, *patch.ProjectID)
		if err != nil {
			return nil, err
		}
		t.ProjectID, t.Project = target.ID, target
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if t.Status != prevStatus {
		publish(ctx, s.events, queue.ActivityEvent{
			Type: queue.TaskStatusChanged, UserID: callerID, ProjectID: t.ProjectID, TaskID: t.ID,
			Title: t.Title, Status: string(t.Status),
		})
	}
	return t, nil
}

// Delete removes one of the caller's tasks and returns it.
func (s *TaskService) Delete(ctx context.Context, callerID, id uint64) (*model.Task, error) {
	t, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}

	publish(ctx, s.events, queue.ActivityEvent{
		Type: queue.TaskDeleted, UserID: callerID, ProjectID: t.ProjectID, TaskID: t.ID, Title: t.Title,
	})
	return t, nil
}

// Stats counts the caller's tasks per status, optionally for one project.
func (s *TaskService) Stats(ctx context.Context, callerID uint64, projectID *uint64) (model.TaskStats, error) {
	st, err := s.tasks.Stats(ctx, callerID, projectID)
	if err != nil {
		return model.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	return st, nil
}
