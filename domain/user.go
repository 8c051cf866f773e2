package domain

import "time"

// User anchors ownership for projects. Records are immutable after
// registration; there is no update or delete path.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
