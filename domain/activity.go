package domain

// Activity records a completed mutation. Records are published fire-and-forget
// to the activity queue for downstream consumers and never affect the request
// that produced them.
type Activity struct {
	Type      string `json:"type"`
	UserEmail string `json:"userEmail"`
	EntityID  string `json:"entityId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const (
	ActivityUserRegistered = "user-registered"
	ActivityProjectCreated = "project-created"
	ActivityProjectUpdated = "project-updated"
	ActivityProjectDeleted = "project-deleted"
	ActivityTaskCreated    = "task-created"
	ActivityTaskUpdated    = "task-updated"
	ActivityTaskDeleted    = "task-deleted"
	ActivityTaskCompleted  = "task-completed"
	ActivityTaskReopened   = "task-reopened"
)
