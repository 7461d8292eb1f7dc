package store

import (
	"context"
	"errors"

	"github.com/uptask/uptask-server/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store is the persistence contract the services operate against.
// The production implementation is Postgres; tests substitute a fake.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	CreateProject(ctx context.Context, project *models.Project) error

	// FindProject resolves the collaborator set and the ordered task id
	// list along with the project row itself.
	FindProject(ctx context.Context, id string) (*models.Project, error)

	// FindProjectsByMember returns every project the user created or
	// collaborates on, without resolving task lists.
	FindProjectsByMember(ctx context.Context, userID string) ([]*models.Project, error)

	UpdateProject(ctx context.Context, project *models.Project) error

	// DeleteProject cascades: tasks and collaborator rows go with the
	// project in a single transaction.
	DeleteProject(ctx context.Context, id string) error

	AddCollaborator(ctx context.Context, projectID, userID string) error

	// RemoveCollaborator is a no-op when the user is not a member.
	RemoveCollaborator(ctx context.Context, projectID, userID string) error

	// CreateTask appends the task to its project's task list and inserts
	// the record as one transaction.
	CreateTask(ctx context.Context, task *models.Task) error

	// FindTask resolves the completed-by user when the task carries one.
	FindTask(ctx context.Context, id string) (*models.Task, error)

	FindTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error

	// DeleteTask removes the task from its project's task list and
	// deletes the record as one transaction; a torn half rolls the
	// other back.
	DeleteTask(ctx context.Context, id string) error
}
