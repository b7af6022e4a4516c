package model

import "time"

// Project represents a row in the `projects` table.  A project belongs to
// exactly one user for its whole life; ownership of every task is derived
// from the project it sits in.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – short name shown in lists.
//	Description – optional free text.
//	OwnerID     – users.id of the owner, never changed after creation.
//	TaskCount   – number of tasks, filled by list queries only.
//	Tasks       – the project's tasks, filled by detail lookups only.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Project struct {
	ID          uint64    // projects.id
	Title       string    // projects.title
	Description *string   // projects.description (nullable)
	OwnerID     uint64    // projects.user_id
	TaskCount   int       // COUNT(tasks.id)
	Tasks       []Task    // tasks WHERE project_id = id
	CreatedAt   time.Time // projects.created_at
	UpdatedAt   time.Time // projects.updated_at
}
