package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{TaskPending, TaskInProgress, TaskCompleted} {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []TaskStatus{"", "done", "PENDING"} {
		assert.False(t, s.Valid(), s)
	}
}

func TestTaskPriority_Valid(t *testing.T) {
	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.True(t, p.Valid(), p)
	}
	for _, p := range []TaskPriority{"", "urgent", "High"} {
		assert.False(t, p.Valid(), p)
	}
}

func TestUser_AuthMethods(t *testing.T) {
	hash, empty, google := "$2a$10$x", "", "google"

	assert.False(t, User{}.HasPassword())
	assert.False(t, User{PasswordHash: &empty}.HasPassword())
	assert.True(t, User{PasswordHash: &hash}.HasPassword())

	assert.False(t, User{}.IsLinked())
	assert.True(t, User{Provider: &google}.IsLinked())
}
