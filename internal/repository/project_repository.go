package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/taskboard/internal/model"
)

// ProjectRepo encapsulates all database queries related to projects.  It
// does not enforce ownership on point lookups; callers compare OwnerID so
// that a missing project and a foreign one stay distinguishable.
type ProjectRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewProjectRepo constructs a ProjectRepo with the provided DB handle.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts a new project.  On success ID, CreatedAt and UpdatedAt
// are populated.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	ts := now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (title, description, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Description, p.OwnerID, ts, ts)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = ts, ts
	return nil
}

// GetByID fetches a project regardless of owner.  It returns ErrNotFound
// if no row is found.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (*model.Project, error) {
	const q = `SELECT id, title, description, user_id, created_at, updated_at
	           FROM projects WHERE id = ?`
	var p model.Project
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Title, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns the owner's projects, newest first, each with its
// task count.
func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Project, error) {
	const q = `SELECT p.id, p.title, p.description, p.user_id, p.created_at, p.updated_at,
	                  (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count
	           FROM projects p
	           WHERE p.user_id = ?
	           ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.OwnerID,
			&p.CreatedAt, &p.UpdatedAt, &p.TaskCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes Title and Description of p and refreshes UpdatedAt.
// Existence is checked by the caller; MySQL reports zero affected rows for
// an unchanged row, so RowsAffected is not consulted here.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	ts := now()
	if _, err := r.db.ExecContext(ctx,
		`UPDATE projects SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Description, ts, p.ID); err != nil {
		return err
	}
	p.UpdatedAt = ts
	return nil
}

// Delete removes a project.  Its tasks go with it through the
// ON DELETE CASCADE foreign key on tasks.project_id.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
