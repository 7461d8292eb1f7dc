package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uptask/uptask-server/internal/models"
	"github.com/uptask/uptask-server/internal/realtime"
	"github.com/uptask/uptask-server/internal/services"
)

// broadcastTask relays a committed task mutation into the task's
// project room. The connection that originated the request, identified
// by the X-Client-ID header, is skipped.
func (h *handlerImpl) broadcastTask(c *gin.Context, event string, task *models.Task) {
	h.hub.Broadcast(task.ProjectID, event, newTaskResponse(task), c.GetHeader(originHeader))
}

type createTaskRequest struct {
	ProjectID   string     `json:"project" binding:"required"`
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description" binding:"required"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTaskParams{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.DueDate != nil {
		params.DueDate = *req.DueDate
	}

	task, err := h.tasks.CreateTask(c, userID, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortServiceError(c, err)
		return
	}

	h.broadcastTask(c, realtime.EventTaskAdded, task)
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

type editTaskRequest struct {
	Name        *string    `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (h *handlerImpl) HandleEditTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	var req editTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.EditTask(c, userID, c.Param("id"), services.EditTaskParams{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to edit task")
		abortServiceError(c, err)
		return
	}

	h.broadcastTask(c, realtime.EventTaskEdited, task)
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	task, err := h.tasks.DeleteTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abortServiceError(c, err)
		return
	}

	h.broadcastTask(c, realtime.EventTaskRemoved, task)
	c.JSON(http.StatusOK, gin.H{"msg": "task deleted"})
}

func (h *handlerImpl) HandleToggleTask(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to toggle task completion")
		abortServiceError(c, err)
		return
	}

	h.broadcastTask(c, realtime.EventTaskCompletionChanged, task)
	c.JSON(http.StatusOK, newTaskResponse(task))
}
