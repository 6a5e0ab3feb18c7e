package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"taskboard/internal/models"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore backs the three repositories in memory.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	projects map[int64]*models.Project
	tasks    map[int64]*models.Task
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.User{},
		projects: map[int64]*models.Project{},
		tasks:    map[int64]*models.Task{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memTasks struct{ *memStore }
type memProjects struct{ *memStore }
type memUsers struct{ *memStore }

func (r memTasks) Create(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if t.AssigneeID != nil {
		if _, ok := r.users[*t.AssigneeID]; !ok {
			return &models.ValidationError{Field: "assignee_id", Message: "references a missing record"}
		}
	}
	t.ID = r.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r memTasks) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task: %w", models.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r memTasks) Update(_ context.Context, id int64, ch models.TaskChanges) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("update task: %w", models.ErrNotFound)
	}
	if ch.Title != nil {
		t.Title = *ch.Title
	}
	if ch.Description != nil {
		t.Description = ch.Description
	}
	if ch.Status != nil {
		t.Status = *ch.Status
	}
	if ch.Priority != nil {
		t.Priority = *ch.Priority
	}
	if ch.ClearAssignee {
		t.AssigneeID = nil
	} else if ch.AssigneeID != nil {
		v := *ch.AssigneeID
		t.AssigneeID = &v
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (r memTasks) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("delete task: %w", models.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func (r memTasks) ListForUser(_ context.Context, userID int64, f models.TaskFilter) ([]models.Task, error) {
	return r.list(func(t *models.Task) bool {
		if t.CreatorID != userID && !t.IsAssignedTo(userID) {
			return false
		}
		if f.Status != nil && t.Status != *f.Status {
			return false
		}
		return f.ProjectID == nil || t.ProjectID == *f.ProjectID
	}), nil
}

func (r memTasks) ListByProject(_ context.Context, projectID int64) ([]models.Task, error) {
	return r.list(func(t *models.Task) bool { return t.ProjectID == projectID }), nil
}

func (r memTasks) ListByProjects(_ context.Context, ids []int64) ([]models.Task, error) {
	in := map[int64]bool{}
	for _, id := range ids {
		in[id] = true
	}
	return r.list(func(t *models.Task) bool { return in[t.ProjectID] }), nil
}

func (r memTasks) list(keep func(*models.Task) bool) []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Task{}
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memProjects) Create(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.id()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r memProjects) GetByID(_ context.Context, id int64) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("get project: %w", models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r memProjects) Update(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.Tasks = nil
	r.projects[p.ID] = &cp
	return nil
}

// Delete cascades like the foreign key does.
func (r memProjects) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return fmt.Errorf("delete project: %w", models.ErrNotFound)
	}
	delete(r.projects, id)
	for tid, t := range r.tasks {
		if t.ProjectID == id {
			delete(r.tasks, tid)
		}
	}
	return nil
}

func (r memProjects) ListByOwner(_ context.Context, ownerID int64) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Project{}
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memProjects) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	ps, _ := r.ListByOwner(ctx, ownerID)
	return len(ps), nil
}

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", models.ErrConflict)
		}
	}
	u.ID = r.id()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", models.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", models.ErrNotFound)
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return fmt.Errorf("update user: %w", models.ErrConflict)
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r memUsers) UpdateAvatar(_ context.Context, id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.AvatarURL = &url
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (m *memStore) addUser(name string, chatID int64) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.id(), Name: name, Email: name + "@example.com", Role: models.RoleUser}
	if chatID != 0 {
		u.TelegramChatID = &chatID
	}
	m.users[u.ID] = u
	cp := *u
	return &cp
}

func (m *memStore) addProject(ownerID int64) *models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Project{ID: m.id(), Name: "P", OwnerID: ownerID}
	m.projects[p.ID] = p
	cp := *p
	return &cp
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct{ sent []sentMessage }

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID, text})
	return nil
}

type publishedEvent struct {
	projectID int64
	kind      string
	taskID    int64
}

type fakePublisher struct{ events []publishedEvent }

func (f *fakePublisher) PublishTaskEvent(projectID int64, kind string, t *models.Task) {
	f.events = append(f.events, publishedEvent{projectID, kind, t.ID})
}
