package model

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority ranks a task.  A nil priority means unset.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a row in the `tasks` table.  Tasks carry no owner
// column; the owner is the owner of Project.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – required short description.
//	Description – optional free text.
//	Status      – pending, in_progress or completed.
//	Priority    – low, medium, high or nil when unset.
//	DueDate     – optional deadline.
//	ProjectID   – project the task belongs to.
//	Project     – the parent project, filled by joined lookups.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Task struct {
	ID          uint64        // tasks.id
	Title       string        // tasks.title
	Description *string       // tasks.description (nullable)
	Status      TaskStatus    // tasks.status
	Priority    *TaskPriority // tasks.priority (nullable)
	DueDate     *time.Time    // tasks.due_date (nullable)
	ProjectID   uint64        // tasks.project_id
	Project     *Project      // JOIN projects
	CreatedAt   time.Time     // tasks.created_at
	UpdatedAt   time.Time     // tasks.updated_at
}

// TaskStats aggregates task counts per status for one caller.
type TaskStats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}
