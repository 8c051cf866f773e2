package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Project is the aggregate root owning a collection of tasks. OwnerEmail and
// CreatedAt are set at creation and never change.
type Project struct {
	ID          string
	Title       string
	Description string
	OwnerEmail  string
	CreatedAt   time.Time
}

// ProjectInput carries the client-editable project fields.
type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (in ProjectInput) validate() error {
	v := newValidationError()
	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 100 {
		v.add("title", "Title must be between 3 and 100 characters")
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		v.add("description", "Description cannot exceed 500 characters")
	}
	return v.err()
}

// ProjectSummary is the read model returned for a project. Progress is
// derived from the live task collection on every read.
type ProjectSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Progress
}

// ProjectPage is one zero-indexed page of a user's projects.
type ProjectPage struct {
	Projects   []ProjectSummary `json:"projects"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}
