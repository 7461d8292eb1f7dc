package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uptask/uptask-server/internal/models"
	"github.com/uptask/uptask-server/internal/store"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory store.Store that maintains the same
// relations the Postgres implementation does: collaborators resolve to
// users, task lists stay ordered, completed-by resolves on reads.
type fakeStore struct {
	users    map[string]*models.User
	projects map[string]*models.Project
	tasks    map[string]*models.Task

	failUpdateTask    bool
	failDeleteTask    bool
	failUpdateProject bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*models.User),
		projects: make(map[string]*models.Project),
		tasks:    make(map[string]*models.Task),
	}
}

func (f *fakeStore) seedUser(name, email string) *models.User {
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Confirmed: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrConflict
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUserByToken(_ context.Context, token string) (*models.User, error) {
	for _, user := range f.users {
		if user.Token != "" && user.Token == token {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) CreateProject(_ context.Context, project *models.Project) error {
	clone := cloneProject(project)
	f.projects[project.ID] = clone
	return nil
}

func (f *fakeStore) FindProject(_ context.Context, id string) (*models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneProject(project), nil
}

func (f *fakeStore) FindProjectsByMember(_ context.Context, userID string) ([]*models.Project, error) {
	var projects []*models.Project
	for _, project := range f.projects {
		if project.IsCreator(userID) || project.IsCollaborator(userID) {
			projects = append(projects, cloneProject(project))
		}
	}
	return projects, nil
}

func (f *fakeStore) UpdateProject(_ context.Context, project *models.Project) error {
	if f.failUpdateProject {
		return errStoreDown
	}
	existing, ok := f.projects[project.ID]
	if !ok {
		return store.ErrNotFound
	}
	clone := cloneProject(project)
	// Membership and task lists are owned by their own operations.
	clone.Collaborators = existing.Collaborators
	clone.TaskIDs = existing.TaskIDs
	f.projects[project.ID] = clone
	return nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id string) error {
	project, ok := f.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, taskID := range project.TaskIDs {
		delete(f.tasks, taskID)
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) AddCollaborator(_ context.Context, projectID, userID string) error {
	project, ok := f.projects[projectID]
	if !ok {
		return store.ErrNotFound
	}
	if project.IsCollaborator(userID) {
		return store.ErrConflict
	}
	user, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	project.Collaborators = append(project.Collaborators, *user)
	return nil
}

func (f *fakeStore) RemoveCollaborator(_ context.Context, projectID, userID string) error {
	project, ok := f.projects[projectID]
	if !ok {
		return store.ErrNotFound
	}
	for i, c := range project.Collaborators {
		if c.ID == userID {
			project.Collaborators = append(project.Collaborators[:i], project.Collaborators[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, task *models.Task) error {
	project, ok := f.projects[task.ProjectID]
	if !ok {
		return store.ErrNotFound
	}
	clone := *task
	f.tasks[task.ID] = &clone
	project.TaskIDs = append(project.TaskIDs, task.ID)
	return nil
}

func (f *fakeStore) FindTask(_ context.Context, id string) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *task
	if clone.CompletedByID != "" {
		if user, ok := f.users[clone.CompletedByID]; ok {
			userClone := *user
			clone.CompletedBy = &userClone
		}
	}
	return &clone, nil
}

func (f *fakeStore) FindTasksByProject(_ context.Context, projectID string) ([]*models.Task, error) {
	project, ok := f.projects[projectID]
	if !ok {
		return nil, nil
	}
	tasks := make([]*models.Task, 0, len(project.TaskIDs))
	for _, taskID := range project.TaskIDs {
		task, err := f.FindTask(context.Background(), taskID)
		if err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, task *models.Task) error {
	if f.failUpdateTask {
		return errStoreDown
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *task
	clone.CompletedBy = nil
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id string) error {
	if f.failDeleteTask {
		return errStoreDown
	}
	task, ok := f.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	if project, ok := f.projects[task.ProjectID]; ok {
		for i, taskID := range project.TaskIDs {
			if taskID == id {
				project.TaskIDs = append(project.TaskIDs[:i], project.TaskIDs[i+1:]...)
				break
			}
		}
	}
	delete(f.tasks, id)
	return nil
}

func cloneProject(project *models.Project) *models.Project {
	clone := *project
	clone.Collaborators = append([]models.User(nil), project.Collaborators...)
	clone.TaskIDs = append([]string(nil), project.TaskIDs...)
	return &clone
}

// fakeMailer records sends so tests can wait for the background
// goroutines the auth service spawns.
type fakeMailer struct {
	mu            sync.Mutex
	confirmations []string
	resets        []string
}

func (m *fakeMailer) SendAccountConfirmation(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, user.Email)
	return nil
}

func (m *fakeMailer) SendPasswordReset(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, user.Email)
	return nil
}
