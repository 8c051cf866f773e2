package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TaskService orchestrates the task lifecycle within a project. Ownership is
// always resolved through the parent project.
type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
}

func NewTaskService(tasks TaskStore, projects ProjectStore) TaskService {
	return TaskService{tasks: tasks, projects: projects}
}

// Create adds a task under an owned project. Due dates before today are
// rejected; the completed flag defaults to false unless supplied.
func (s TaskService) Create(ctx context.Context, projectID string, in TaskInput, ownerEmail string) (*Task, error) {
	p, err := s.ownedParent(ctx, projectID, ownerEmail)
	if err != nil {
		return nil, err
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	t := Task{
		ID:          uuid.NewString(),
		ProjectID:   p.ID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if err := s.tasks.InsertTask(ctx, t); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task": t.ID, "project": projectID, "user": ownerEmail}).Info("task created")
	return &t, nil
}

// ListByProject returns all tasks of an owned project.
func (s TaskService) ListByProject(ctx context.Context, projectID, ownerEmail string) ([]Task, error) {
	if _, err := s.ownedParent(ctx, projectID, ownerEmail); err != nil {
		return nil, err
	}
	return s.tasks.ListTasks(ctx, projectID)
}

// Update overwrites title, description and due date. The completed flag is
// only touched when present in the input; absence means "leave unchanged".
func (s TaskService) Update(ctx context.Context, taskID string, in TaskInput, ownerEmail string) (*Task, error) {
	t, err := s.ownedTask(ctx, taskID, ownerEmail)
	if err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}
	t.Title = in.Title
	t.Description = in.Description
	t.DueDate = in.DueDate
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if err := s.tasks.UpdateTask(ctx, *t); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task": taskID, "user": ownerEmail}).Info("task updated")
	return t, nil
}

// Delete removes a single task; the parent project is untouched.
func (s TaskService) Delete(ctx context.Context, taskID, ownerEmail string) error {
	t, err := s.ownedTask(ctx, taskID, ownerEmail)
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, *t); err != nil {
		return err
	}
	log.WithFields(log.Fields{"task": taskID, "user": ownerEmail}).Info("task deleted")
	return nil
}

// MarkCompleted sets the completed flag. Repeating the call leaves the task
// completed without error.
func (s TaskService) MarkCompleted(ctx context.Context, taskID, ownerEmail string) (*Task, error) {
	return s.setCompleted(ctx, taskID, ownerEmail, true)
}

// MarkIncomplete clears the completed flag, idempotently.
func (s TaskService) MarkIncomplete(ctx context.Context, taskID, ownerEmail string) (*Task, error) {
	return s.setCompleted(ctx, taskID, ownerEmail, false)
}

func (s TaskService) setCompleted(ctx context.Context, taskID, ownerEmail string, completed bool) (*Task, error) {
	t, err := s.ownedTask(ctx, taskID, ownerEmail)
	if err != nil {
		return nil, err
	}
	t.Completed = completed
	if err := s.tasks.UpdateTask(ctx, *t); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task": taskID, "completed": completed, "user": ownerEmail}).Info("task completion set")
	return t, nil
}

func (s TaskService) ownedParent(ctx context.Context, projectID, ownerEmail string) (*Project, error) {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := ownedProject(p, ownerEmail); err != nil {
		return nil, err
	}
	return p, nil
}

// ownedTask resolves ownership transitively: the task's parent project is
// looked up at check time and its owner compared against the acting user.
// Tasks that exist but belong to someone else read as absent.
func (s TaskService) ownedTask(ctx context.Context, taskID, ownerEmail string) (*Task, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NotFound("Task")
	}
	p, err := s.projects.GetProject(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.OwnerEmail != ownerEmail {
		return nil, NotFound("Task")
	}
	return t, nil
}
