package domain

import (
	"strings"
	"time"
)

// Task belongs to exactly one project. The parent link is immutable and tasks
// carry no owner of their own; ownership resolves through the parent project.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     Date      `json:"dueDate"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskInput carries the client-editable task fields. Completed is tri-state:
// nil leaves the stored flag unchanged on update and defaults to false on
// create.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     Date   `json:"dueDate"`
	Completed   *bool  `json:"completed,omitempty"`
}

func (in TaskInput) validate(rejectPastDue bool) error {
	v := newValidationError()
	if strings.TrimSpace(in.Title) == "" {
		v.add("title", "Task title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		v.add("description", "Task description is required")
	}
	if in.DueDate.IsZero() {
		v.add("dueDate", "Due date is required")
	} else if rejectPastDue && in.DueDate.Before(Today()) {
		v.add("dueDate", "Due date cannot be in the past")
	}
	return v.err()
}
