package api

import (
	"context"
	"time"

	"taskdeck-api/domain"
)

// Store groups the persistence operations the API surface depends on.
type Store interface {
	domain.UserStore
	domain.ProjectStore
	domain.TaskStore
	EnqueueActivity(ctx context.Context, act domain.Activity) error
}

// Authenticator issues and verifies bearer credentials.
type Authenticator interface {
	IssueToken(subject string) (string, time.Time, error)
	SubjectFromAuthHeader(header string) (string, error)
}

// requestBodyMaxSize bounds how much of a request body handlers will decode.
const requestBodyMaxSize = 1 << 20
