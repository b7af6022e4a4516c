package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/taskboard/internal/model"
	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/repository"
)

// ProjectStore persists projects.
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id uint64) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id uint64) error
}

// ProjectTaskLister loads the tasks embedded in project responses.
type ProjectTaskLister interface {
	ListByProject(ctx context.Context, projectID uint64) ([]model.Task, error)
	ListByOwner(ctx context.Context, ownerID uint64, projectID *uint64) ([]model.Task, error)
}

// ProjectInput is the payload for creating a project.
type ProjectInput struct {
	Title       string
	Description *string
}

// ProjectPatch lists the fields to change; nil fields are left untouched.
type ProjectPatch struct {
	Title       *string
	Description *string
}

// ProjectService implements ownership-checked project operations.
type ProjectService struct {
	projects ProjectStore
	tasks    ProjectTaskLister
	events   queue.Publisher
}

func NewProjectService(projects ProjectStore, tasks ProjectTaskLister, events queue.Publisher) *ProjectService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &ProjectService{projects: projects, tasks: tasks, events: events}
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	return title, nil
}

// Create stores a new project owned by callerID.
func (s *ProjectService) Create(ctx context.Context, callerID uint64, in ProjectInput) (*model.Project, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	p := &model.Project{Title: title, Description: in.Description, OwnerID: callerID}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	p.Tasks = []model.Task{}

	publish(ctx, s.events, queue.ActivityEvent{Type: queue.ProjectCreated, UserID: callerID, ProjectID: p.ID, Title: p.Title})
	return p, nil
}

// List returns the caller's projects, newest first, each with its tasks
// and task count.  Tasks are loaded in one query for all projects.
func (s *ProjectService) List(ctx context.Context, callerID uint64) ([]model.Project, error) {
	list, err := s.projects.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}
	tasks, err := s.tasks.ListByOwner(ctx, callerID, nil)
	if err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	byProject := make(map[uint64][]model.Task, len(list))
	for _, t := range tasks {
		t.Project = nil
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}
	for i := range list {
		list[i].Tasks = byProject[list[i].ID]
		if list[i].Tasks == nil {
			list[i].Tasks = []model.Task{}
		}
		list[i].TaskCount = len(list[i].Tasks)
	}
	return list, nil
}

// withTasks attaches the project's tasks and count to p.
func (s *ProjectService) withTasks(ctx context.Context, p *model.Project) (*model.Project, error) {
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	p.Tasks = tasks
	p.TaskCount = len(tasks)
	return p, nil
}

// owned fetches a project and checks that callerID owns it.
func (s *ProjectService) owned(ctx context.Context, callerID, id uint64) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
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

// Get returns one of the caller's projects with its tasks.
func (s *ProjectService) Get(ctx context.Context, callerID, id uint64) (*model.Project, error) {
	p, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	return s.withTasks(ctx, p)
}

// Update applies patch to one of the caller's projects and returns it with
// its tasks.
func (s *ProjectService) Update(ctx context.Context, callerID, id uint64, patch ProjectPatch) (*model.Project, error) {
	p, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if p.Title, err = requireTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.withTasks(ctx, p)
}

// Delete removes one of the caller's projects together with its tasks and
// returns the removed project.
func (s *ProjectService) Delete(ctx context.Context, callerID, id uint64) (*model.Project, error) {
	p, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete project: %w", err)
	}

	publish(ctx, s.events, queue.ActivityEvent{Type: queue.ProjectDeleted, UserID: callerID, ProjectID: p.ID, Title: p.Title})
	return p, nil
}
