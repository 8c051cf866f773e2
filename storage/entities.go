package storage

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskdeck-api/domain"
)

type userEntity struct {
	aztables.Entity
	UserID       string `json:"UserID"`
	PasswordHash string `json:"PasswordHash"`
	CreatedAt    string `json:"CreatedAt"`
}

func newUserEntity(u domain.User) userEntity {
	return userEntity{
		Entity:       aztables.Entity{PartitionKey: u.Email, RowKey: u.Email},
		UserID:       u.ID,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (e userEntity) toDomain() (*domain.User, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           e.UserID,
		Email:        e.RowKey,
		PasswordHash: e.PasswordHash,
		CreatedAt:    createdAt,
	}, nil
}

// projectEntity is partitioned by owner email so a user's projects share one
// partition.
type projectEntity struct {
	aztables.Entity
	Title       string `json:"Title"`
	Description string `json:"Description"`
	CreatedAt   string `json:"CreatedAt"`
}

func newProjectEntity(p domain.Project) projectEntity {
	return projectEntity{
		Entity:      aztables.Entity{PartitionKey: p.OwnerEmail, RowKey: p.ID},
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (e projectEntity) toDomain() (*domain.Project, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Project{
		ID:          e.RowKey,
		Title:       e.Title,
		Description: e.Description,
		OwnerEmail:  e.PartitionKey,
		CreatedAt:   createdAt,
	}, nil
}

// taskEntity is partitioned by project id, which keeps the cascade delete a
// single-partition batch.
type taskEntity struct {
	aztables.Entity
	Title       string `json:"Title"`
	Description string `json:"Description"`
	DueDate     string `json:"DueDate"`
	Completed   bool   `json:"Completed"`
	CreatedAt   string `json:"CreatedAt"`
}

func newTaskEntity(t domain.Task) taskEntity {
	return taskEntity{
		Entity:      aztables.Entity{PartitionKey: t.ProjectID, RowKey: t.ID},
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.String(),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (e taskEntity) toDomain() (*domain.Task, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return nil, err
	}
	var dueDate domain.Date
	if e.DueDate != "" {
		dueDate, err = domain.ParseDate(e.DueDate)
		if err != nil {
			return nil, err
		}
	}
	return &domain.Task{
		ID:          e.RowKey,
		ProjectID:   e.PartitionKey,
		Title:       e.Title,
		Description: e.Description,
		DueDate:     dueDate,
		Completed:   e.Completed,
		CreatedAt:   createdAt,
	}, nil
}
