package domain

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memStore is an in-memory implementation of the store interfaces used by
// the service tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]User
	projects map[string]Project
	tasks    map[string]Task
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]User{},
		projects: map[string]Project{},
		tasks:    map[string]Task{},
	}
}

func (m *memStore) GetUser(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (m *memStore) UserExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

func (m *memStore) InsertUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return ErrEmailTaken
	}
	m.users[u.Email] = u
	return nil
}

func (m *memStore) GetProject(_ context.Context, id string) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (m *memStore) ListProjects(_ context.Context, ownerEmail, search string, page, pageSize int) ([]Project, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []Project{}
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

func (m *memStore) InsertProject(_ context.Context, p Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) UpdateProject(_ context.Context, p Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) DeleteProject(_ context.Context, p Project) error {
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

func (m *memStore) GetTask(_ context.Context, id string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := t
	return &cp, nil
}

func (m *memStore) ListTasks(_ context.Context, projectID string) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []Task{}
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

func (m *memStore) InsertTask(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *memStore) UpdateTask(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *memStore) DeleteTask(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, t.ID)
	return nil
}
