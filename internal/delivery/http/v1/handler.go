package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/uptask/uptask-server/internal/models"
	"github.com/uptask/uptask-server/internal/realtime"
	"github.com/uptask/uptask-server/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleConfirm(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleForgotPassword(c *gin.Context)
	HandleCheckResetToken(c *gin.Context)
	HandleResetPassword(c *gin.Context)
	HandleProfile(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleListProjects(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleGetProject(c *gin.Context)
	HandleEditProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)
	HandleSearchCollaborator(c *gin.Context)
	HandleAddCollaborator(c *gin.Context)
	HandleRemoveCollaborator(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleEditTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleToggleTask(c *gin.Context)

	HandleWebsocket(c *gin.Context)
}

type handlerImpl struct {
	logger      zerolog.Logger
	auth        services.AuthService
	projects    services.ProjectService
	tasks       services.TaskService
	hub         *realtime.Hub
	frontendURL string
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	projectService services.ProjectService,
	taskService services.TaskService,
	hub *realtime.Hub,
	frontendURL string,
) Handler {
	return &handlerImpl{
		logger:      logger,
		auth:        authService,
		projects:    projectService,
		tasks:       taskService,
		hub:         hub,
		frontendURL: frontendURL,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

type projectResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Client        string         `json:"client"`
	Creator       string         `json:"creator"`
	Collaborators []userResponse `json:"collaborators"`
	TaskIDs       []string       `json:"tasks,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func newProjectResponse(project *models.Project) projectResponse {
	collaborators := make([]userResponse, 0, len(project.Collaborators))
	for i := range project.Collaborators {
		collaborators = append(collaborators, newUserResponse(&project.Collaborators[i]))
	}
	return projectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		Client:        project.Client,
		Creator:       project.CreatorID,
		Collaborators: collaborators,
		TaskIDs:       project.TaskIDs,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
}

// taskResponse doubles as the broadcast payload, so it always carries
// the parent project reference and, when the task is completed, the
// resolved completed-by user instead of a bare id.
type taskResponse struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Priority    string        `json:"priority"`
	DueDate     time.Time     `json:"dueDate"`
	Done        bool          `json:"estado"`
	CompletedBy *userResponse `json:"completado,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Done:        task.Done,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.CompletedBy != nil {
		completedBy := newUserResponse(task.CompletedBy)
		resp.CompletedBy = &completedBy
	}
	return resp
}
