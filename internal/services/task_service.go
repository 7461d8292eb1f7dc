package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uptask/uptask-server/internal/access"
	"github.com/uptask/uptask-server/internal/models"
	"github.com/uptask/uptask-server/internal/store"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewTaskService(logger zerolog.Logger, st store.Store) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  st,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*models.Task, error) {
	_, err := uuid.Parse(params.ProjectID)
	if err != nil {
		return nil, ErrInvalidReference
	}

	project, err := s.store.FindProject(ctx, params.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", params.ProjectID).
			Msg("failed to select project")
		return nil, err
	}

	if !project.IsCreator(userID) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("project_id", project.ID).
			Msg("only the creator can add tasks")
		return nil, ErrForbidden
	}

	if params.Priority != "" && !models.ValidPriority(params.Priority) {
		return nil, ErrInvalidPriority
	}

	now := time.Now()
	task := &models.Task{
		ProjectID:   project.ID,
		Name:        params.Name,
		Description: params.Description,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityLow
	}
	if task.DueDate.IsZero() {
		task.DueDate = now
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	err = s.store.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("project_id", project.ID).
		Msg("created task")
	return task, nil
}

// resolveTask loads the task and its parent project in that order, so a
// missing task surfaces before any permission question, and the caller
// always gets the project it needs for the authorization check.
func (s *taskServiceImpl) resolveTask(ctx context.Context, taskID string) (*models.Task, *models.Project, error) {
	_, err := uuid.Parse(taskID)
	if err != nil {
		return nil, nil, ErrInvalidReference
	}

	task, err := s.store.FindTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, nil, err
	}

	project, err := s.store.FindProject(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", task.ProjectID).
			Msg("failed to select parent project")
		return nil, nil, err
	}
	return task, project, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, project, err := s.resolveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !access.CanTask(userID, project, access.ActionView) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("task_id", taskID).
			Msg("view not allowed")
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *taskServiceImpl) EditTask(ctx context.Context, userID, taskID string, params EditTaskParams) (*models.Task, error) {
	task, project, err := s.resolveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !access.CanTask(userID, project, access.ActionEdit) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("task_id", taskID).
			Msg("edit not allowed")
		return nil, ErrForbidden
	}

	if params.Name != nil {
		task.Name = *params.Name
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Priority != nil {
		if !models.ValidPriority(*params.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = *params.DueDate
	}
	task.UpdatedAt = time.Now()

	err = s.store.UpdateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, project, err := s.resolveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !access.CanTask(userID, project, access.ActionDelete) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("task_id", taskID).
			Msg("delete not allowed")
		return nil, ErrForbidden
	}

	// The store removes the list entry and the record together; a torn
	// half surfaces here as an error instead of leaving an orphan.
	err = s.store.DeleteTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("project_id", project.ID).
		Msg("deleted task")
	return task, nil
}

func (s *taskServiceImpl) ToggleTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, project, err := s.resolveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !access.CanTask(userID, project, access.ActionToggleCompletion) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("task_id", taskID).
			Msg("toggling completion not allowed")
		return nil, ErrForbidden
	}

	task.Done = !task.Done
	task.CompletedByID = userID
	task.UpdatedAt = time.Now()

	err = s.store.UpdateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	// Re-read so the completed-by user is resolved and the broadcast
	// payload is complete.
	task, err = s.store.FindTask(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to reload task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Bool("done", task.Done).
		Msg("toggled task completion")
	return task, nil
}
