// Package queue defines the activity events exchanged over the message
// broker, the publisher used by services and the background consumer that
// appends them to the activity log.
package queue

import "time"

// ActivityQueueName is the durable queue carrying ActivityEvent messages.
const ActivityQueueName = "taskboard.activity"

// Activity event types.
const (
	UserRegistered    = "user.registered"
	UserOAuthLinked   = "user.oauth_linked"
	ProjectCreated    = "project.created"
	ProjectDeleted    = "project.deleted"
	TaskCreated       = "task.created"
	TaskStatusChanged = "task.status_changed"
	TaskDeleted       = "task.deleted"
)

// ActivityEvent is published after a state change succeeds.  It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type ActivityEvent struct {
	Type       string    `json:"type"`
	UserID     uint64    `json:"user_id"`
	ProjectID  uint64    `json:"project_id,omitempty"`
	TaskID     uint64    `json:"task_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
