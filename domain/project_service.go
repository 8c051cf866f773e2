package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ProjectStore persists project aggregates. ListProjects applies the search
// filter and pagination and reports the total number of matches.
// DeleteProject removes the project together with all of its tasks.
type ProjectStore interface {
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, ownerEmail, search string, page, pageSize int) ([]Project, int, error)
	InsertProject(ctx context.Context, p Project) error
	UpdateProject(ctx context.Context, p Project) error
	DeleteProject(ctx context.Context, p Project) error
}

// TaskStore persists tasks under their parent project.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	InsertTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, t Task) error
}

// ProjectService orchestrates the project lifecycle. Every resource-scoped
// operation fetches first and checks ownership before touching anything.
type ProjectService struct {
	projects ProjectStore
	tasks    TaskStore
	users    UserStore
	pageSize int
}

func NewProjectService(projects ProjectStore, tasks TaskStore, users UserStore, defaultPageSize int) ProjectService {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return ProjectService{projects: projects, tasks: tasks, users: users, pageSize: defaultPageSize}
}

// Create persists a new project for the acting user. The owner lookup guards
// against identities whose user record no longer exists.
func (s ProjectService) Create(ctx context.Context, in ProjectInput, ownerEmail string) (*ProjectSummary, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	owner, err := s.users.GetUser(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, NotFound("User")
	}
	p := Project{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		OwnerEmail:  owner.Email,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.projects.InsertProject(ctx, p); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"project": p.ID, "user": ownerEmail}).Info("project created")
	summary := summarize(p, nil)
	return &summary, nil
}

// List returns one page of the acting user's projects. A non-empty search
// term filters by case-insensitive title substring.
func (s ProjectService) List(ctx context.Context, ownerEmail, search string, page, pageSize int) (*ProjectPage, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	projects, total, err := s.projects.ListProjects(ctx, ownerEmail, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		tasks, err := s.tasks.ListTasks(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summarize(p, tasks))
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &ProjectPage{
		Projects:   summaries,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Get returns an owned project with freshly computed progress.
func (s ProjectService) Get(ctx context.Context, id, ownerEmail string) (*ProjectSummary, error) {
	p, err := s.fetchOwned(ctx, id, ownerEmail)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	summary := summarize(*p, tasks)
	return &summary, nil
}

// Update overwrites the title and description. Owner and creation timestamp
// are immutable.
func (s ProjectService) Update(ctx context.Context, id string, in ProjectInput, ownerEmail string) (*ProjectSummary, error) {
	p, err := s.fetchOwned(ctx, id, ownerEmail)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p.Title = in.Title
	p.Description = in.Description
	if err := s.projects.UpdateProject(ctx, *p); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"project": id, "user": ownerEmail}).Info("project updated")
	summary := summarize(*p, tasks)
	return &summary, nil
}

// Delete removes the project and cascades to all of its tasks; no orphaned
// task may survive.
func (s ProjectService) Delete(ctx context.Context, id, ownerEmail string) error {
	p, err := s.fetchOwned(ctx, id, ownerEmail)
	if err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, *p); err != nil {
		return err
	}
	log.WithFields(log.Fields{"project": id, "user": ownerEmail}).Info("project deleted")
	return nil
}

func (s ProjectService) fetchOwned(ctx context.Context, id, ownerEmail string) (*Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownedProject(p, ownerEmail); err != nil {
		return nil, err
	}
	return p, nil
}

func summarize(p Project, tasks []Task) ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		Progress:    TaskProgress(tasks),
	}
}
