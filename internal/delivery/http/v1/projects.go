package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uptask/uptask-server/internal/services"
)

func (h *handlerImpl) HandleListProjects(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListProjects(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list projects")
		abortServiceError(c, err)
		return
	}

	response := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, newProjectResponse(project))
	}
	c.JSON(http.StatusOK, response)
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Client      string `json:"client" binding:"required,max=255"`
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req createProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	project, err := h.projects.CreateProject(c, userID, services.CreateProjectParams{
		Name:        req.Name,
		Description: req.Description,
		Client:      req.Client,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create project")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project))
}

type projectDetailResponse struct {
	projectResponse
	Tasks []taskResponse `json:"taskList"`
}

func (h *handlerImpl) HandleGetProject(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	detail, err := h.projects.GetProject(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get project")
		abortServiceError(c, err)
		return
	}

	tasks := make([]taskResponse, 0, len(detail.Tasks))
	for _, task := range detail.Tasks {
		tasks = append(tasks, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, projectDetailResponse{
		projectResponse: newProjectResponse(detail.Project),
		Tasks:           tasks,
	})
}

type editProjectRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Client      *string `json:"client,omitempty" binding:"omitempty,max=255"`
}

func (h *handlerImpl) HandleEditProject(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req editProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	project, err := h.projects.EditProject(c, userID, c.Param("id"), services.EditProjectParams{
		Name:        req.Name,
		Description: req.Description,
		Client:      req.Client,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to edit project")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	err := h.projects.DeleteProject(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete project")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "project deleted"})
}

type searchCollaboratorRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

func (h *handlerImpl) HandleSearchCollaborator(c *gin.Context) {
	if _, ok := h.mustUserID(c); !ok {
		return
	}

	var req searchCollaboratorRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.projects.SearchCollaborator(c, req.Email)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to search collaborator")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *handlerImpl) HandleAddCollaborator(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req searchCollaboratorRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	collaborator, err := h.projects.AddCollaborator(c, userID, c.Param("id"), req.Email)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to add collaborator")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(collaborator))
}

type removeCollaboratorRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *handlerImpl) HandleRemoveCollaborator(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req removeCollaboratorRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.projects.RemoveCollaborator(c, userID, c.Param("id"), req.ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to remove collaborator")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "collaborator removed"})
}
