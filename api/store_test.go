package api

import (
	"context"
	"sort"
	"strings"
	"sync"

	"taskdeck-api/domain"
)

// mapStore backs handler tests with an in-memory Store implementation.
type mapStore struct {
	mu         sync.Mutex
	users      map[string]domain.User
	projects   map[string]domain.Project
	tasks      map[string]domain.Task
	activities []domain.Activity
}

func newMapStore() *mapStore {
	return &mapStore{
		users:    map[string]domain.User{},
		projects: map[string]domain.Project{},
		tasks:    map[string]domain.Task{},
	}
}

func (m *mapStore) GetUser(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (m *mapStore) UserExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

func (m *mapStore) InsertUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	m.users[u.Email] = u
	return nil
}

func (m *mapStore) GetProject(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (m *mapStore) ListProjects(_ context.Context, ownerEmail, search string, page, pageSize int) ([]domain.Project, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []domain.Project{}
	needle := strings.ToLower(search)
	for _, p := range m.projects {
		if p.OwnerEmail != ownerEmail {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	total := len(matched)
	lo := page * pageSize
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}
	return matched[lo:hi], total, nil
}

func (m *mapStore) InsertProject(_ context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *mapStore) UpdateProject(_ context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *mapStore) DeleteProject(_ context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, p.ID)
	for id, t := range m.tasks {
		if t.ProjectID == p.ID {
			delete(m.tasks, id)
		}
	}
	return nil
}

func (m *mapStore) GetTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := t
	return &cp, nil
}

func (m *mapStore) ListTasks(_ context.Context, projectID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []domain.Task{}
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (m *mapStore) InsertTask(_ context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *mapStore) UpdateTask(_ context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *mapStore) DeleteTask(_ context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, t.ID)
	return nil
}

func (m *mapStore) EnqueueActivity(_ context.Context, act domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, act)
	return nil
}
