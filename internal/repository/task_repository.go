package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/taskboard/internal/model"
)

// taskWithProject selects a task joined to its parent project.  Task
// ownership is never stored on the task itself; it is read from p.user_id.
const taskWithProject = `SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date,
       t.project_id, t.created_at, t.updated_at,
       p.id, p.title, p.description, p.user_id, p.created_at, p.updated_at
FROM tasks t
JOIN projects p ON p.id = t.project_id`

// TaskRepo encapsulates all database queries related to tasks.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo constructs a TaskRepo with the provided DB handle.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func scanTaskWithProject(s rowScanner) (*model.Task, error) {
	var t model.Task
	p := new(model.Project)
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.ProjectID, &t.CreatedAt, &t.UpdatedAt,
		&p.ID, &p.Title, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Project = p
	return &t, nil
}

// Create inserts a new task.  An empty Status is stored as pending.  On
// success ID, Status, CreatedAt and UpdatedAt are populated.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	ts := now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, project_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, string(t.Status), t.Priority, t.DueDate, t.ProjectID, ts, ts)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt, t.UpdatedAt = ts, ts
	return nil
}

// GetWithProject fetches a task together with its project.  It returns
// ErrNotFound if the task does not exist.
func (r *TaskRepo) GetWithProject(ctx context.Context, id uint64) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx, taskWithProject+" WHERE t.id = ?", id)
	return scanTaskWithProject(row)
}

// ListByOwner returns every task whose project belongs to ownerID, newest
// first.  When projectID is non-nil only that project's tasks are
// returned; the owner condition still applies, so a foreign project id
// yields an empty list.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64, projectID *uint64) ([]model.Task, error) {
	var sb strings.Builder
	sb.WriteString(taskWithProject)
	sb.WriteString(" WHERE p.user_id = ?")
	args := []any{ownerID}
	if projectID != nil {
		sb.WriteString(" AND t.project_id = ?")
		args = append(args, *projectID)
	}
	sb.WriteString(" ORDER BY t.created_at DESC, t.id DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTaskWithProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByProject returns the tasks of one project, newest first, without
// the joined project.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Task, error) {
	const q = `SELECT id, title, description, status, priority, due_date, project_id, created_at, updated_at
	           FROM tasks WHERE project_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the mutable columns of t, including ProjectID, and
// refreshes UpdatedAt.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	ts := now()
	if _, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, project_id = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, string(t.Status), t.Priority, t.DueDate, t.ProjectID, ts, t.ID); err != nil {
		return err
	}
	t.UpdatedAt = ts
	return nil
}

// Delete removes a task.  It returns ErrNotFound when no row is affected.
func (r *TaskRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats counts the owner's tasks per status in one aggregate query,
// optionally restricted to one project.
func (r *TaskRepo) Stats(ctx context.Context, ownerID uint64, projectID *uint64) (model.TaskStats, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN t.status = 'pending' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN t.status = 'in_progress' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN t.status = 'completed' THEN 1 ELSE 0 END), 0)
FROM tasks t
JOIN projects p ON p.id = t.project_id
WHERE p.user_id = ?`)
	args := []any{ownerID}
	if projectID != nil {
		sb.WriteString(" AND t.project_id = ?")
		args = append(args, *projectID)
	}

	var s model.TaskStats
	err := r.db.QueryRowContext(ctx, sb.String(), args...).
		Scan(&s.Total, &s.Pending, &s.InProgress, &s.Completed)
	return s, err
}
