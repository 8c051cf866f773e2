package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both absent resources and resources owned by a
	// different user; the two cases are indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates a registration attempt with an email that is
	// already stored.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials indicates a login failure. Unknown emails and
	// wrong passwords produce the same error.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type notFoundError struct{ resource string }

func (e notFoundError) Error() string { return e.resource + " not found" }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a resource-specific error matched by errors.Is(err, ErrNotFound).
func NotFound(resource string) error { return notFoundError{resource: resource} }

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = message
}

// err returns nil when no field was rejected so call sites can return it directly.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
