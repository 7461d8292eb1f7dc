package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/uptask/uptask-server/internal/models"
)

var (
	ErrInvalidReference      = errors.New("invalid id")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user account not confirmed")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserPasswordMismatch  = errors.New("user password mismatch")
	ErrTokenNotFound         = errors.New("token not found")
	ErrInvalidPriority       = errors.New("invalid task priority")
	ErrProjectNotFound       = errors.New("project not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrForbidden             = errors.New("action not allowed")
	ErrAlreadyCollaborator   = errors.New("user is already a collaborator")
	ErrCreatorAsCollaborator = errors.New("the project creator cannot be a collaborator")
)

type AuthService interface {
	// Register creates an unconfirmed user with a hashed password and a
	// confirmation token, and sends the confirmation email in the
	// background.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Confirm marks the account behind the token as confirmed and
	// clears the token. It returns ErrTokenNotFound for an unknown token.
	Confirm(ctx context.Context, token string) error

	// Login authenticates the user by email and password and issues a
	// JWT whose subject is the user id.
	//
	// It returns ErrUserNotFound, ErrUserNotConfirmed or
	// ErrUserPasswordMismatch.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// ForgotPassword stores a reset token on the account and sends the
	// reset email in the background.
	ForgotPassword(ctx context.Context, email string) error

	// CheckResetToken verifies that a reset token belongs to an account.
	CheckResetToken(ctx context.Context, token string) error

	// ResetPassword replaces the password behind the reset token and
	// clears the token.
	ResetPassword(ctx context.Context, token, password string) error

	// UserByID loads the user for an authenticated id, e.g. from the
	// auth middleware or the profile endpoint.
	UserByID(ctx context.Context, id string) (*models.User, error)

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type ProjectService interface {
	// ListProjects returns every project the user created or
	// collaborates on, without task lists.
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)

	// CreateProject makes the acting user the creator. Creator
	// assignment is immutable afterwards.
	CreateProject(ctx context.Context, userID string, params CreateProjectParams) (*models.Project, error)

	// GetProject resolves the project with its collaborators and its
	// tasks (completed-by users included). Viewing requires the user to
	// be the creator or a collaborator.
	GetProject(ctx context.Context, userID, projectID string) (*ProjectDetail, error)

	// EditProject patches name/description/client. Only fields the
	// caller supplies are replaced. Creator only.
	EditProject(ctx context.Context, userID, projectID string, params EditProjectParams) (*models.Project, error)

	// DeleteProject removes the project and cascades to its tasks and
	// collaborator set. Creator only.
	DeleteProject(ctx context.Context, userID, projectID string) error

	// SearchCollaborator looks a user up by email, the prerequisite
	// step before adding one.
	SearchCollaborator(ctx context.Context, email string) (*models.User, error)

	// AddCollaborator grants the user behind email collaborator rights.
	// Adding the creator yields ErrCreatorAsCollaborator; adding an
	// existing collaborator yields ErrAlreadyCollaborator.
	AddCollaborator(ctx context.Context, userID, projectID, email string) (*models.User, error)

	// RemoveCollaborator revokes membership. Removing a non-member is a
	// no-op. Creator only.
	RemoveCollaborator(ctx context.Context, userID, projectID, collaboratorID string) error

	// AuthorizeView runs the view permission check without loading task
	// lists, used when a realtime connection joins a project room.
	AuthorizeView(ctx context.Context, userID, projectID string) error
}

type TaskService interface {
	// CreateTask inserts the task and appends it to the parent
	// project's task list as one unit. Creator only.
	CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*models.Task, error)

	// GetTask resolves the task. Creator only.
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// EditTask patches name/description/priority/due date. Only fields
	// the caller supplies are replaced; completion state is untouched.
	// Creator only.
	EditTask(ctx context.Context, userID, taskID string, params EditTaskParams) (*models.Task, error)

	// DeleteTask removes the task from its project's task list and
	// deletes the record as one unit, returning the deleted task.
	// Creator only.
	DeleteTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// ToggleTask flips the completion flag and overwrites completed-by
	// with the acting user, then re-reads the task fully resolved.
	// Open to the creator and collaborators.
	//
	// Two concurrent toggles race on the flag; last write wins. The
	// flag is a toggle, not a counter, so the race is accepted.
	ToggleTask(ctx context.Context, userID, taskID string) (*models.Task, error)
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	User           *models.User
	Token          string
	TokenExpiresAt time.Time
}

type CreateProjectParams struct {
	Name        string
	Description string
	Client      string
}

type EditProjectParams struct {
	Name        *string
	Description *string
	Client      *string
}

type ProjectDetail struct {
	Project *models.Project
	Tasks   []*models.Task
}

type CreateTaskParams struct {
	ProjectID   string
	Name        string
	Description string
	Priority    string
	DueDate     time.Time
}

type EditTaskParams struct {
	Name        *string
	Description *string
	Priority    *string
	DueDate     *time.Time
}

// Mailer is the outbound email side channel. Sends are fire-and-forget
// from the services' point of view.
type Mailer interface {
	SendAccountConfirmation(user *models.User) error
	SendPasswordReset(user *models.User) error
}
