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

type projectServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewProjectService(logger zerolog.Logger, st store.Store) ProjectService {
	return &projectServiceImpl{
		logger: logger,
		store:  st,
	}
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	projects, err := s.store.FindProjectsByMember(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select projects")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int("count", len(projects)).
		Msg("selected projects")
	return projects, nil
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, userID string, params CreateProjectParams) (*models.Project, error) {
	now := time.Now()
	project := &models.Project{
		Name:        params.Name,
		Description: params.Description,
		Client:      params.Client,
		CreatorID:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	projectUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate project uuid")
		return nil, err
	}
	project.ID = projectUUID.String()

	err = s.store.CreateProject(ctx, project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("creator_id", userID).
		Msg("created project")
	return project, nil
}

// resolveProject checks the reference syntax before touching the store,
// so a malformed or unknown id never reaches a permission check.
func (s *projectServiceImpl) resolveProject(ctx context.Context, projectID string) (*models.Project, error) {
	_, err := uuid.Parse(projectID)
	if err != nil {
		return nil, ErrInvalidReference
	}

	project, err := s.store.FindProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project")
		return nil, err
	}
	return project, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, userID, projectID string) (*ProjectDetail, error) {
	project, err := s.resolveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !access.CanProject(userID, project, access.ActionView) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("project_id", projectID).
			Msg("view not allowed")
		return nil, ErrForbidden
	}

	tasks, err := s.store.FindTasksByProject(ctx, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project tasks")
		return nil, err
	}

	return &ProjectDetail{
		Project: project,
		Tasks:   tasks,
	}, nil
}

func (s *projectServiceImpl) EditProject(ctx context.Context, userID, projectID string, params EditProjectParams) (*models.Project, error) {
	project, err := s.resolveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !access.CanProject(userID, project, access.ActionEdit) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("project_id", projectID).
			Msg("edit not allowed")
		return nil, ErrForbidden
	}

	if params.Name != nil {
		project.Name = *params.Name
	}
	if params.Description != nil {
		project.Description = *params.Description
	}
	if params.Client != nil {
		project.Client = *params.Client
	}
	project.UpdatedAt = time.Now()

	err = s.store.UpdateProject(ctx, project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to update project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Msg("updated project")
	return project, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, userID, projectID string) error {
	project, err := s.resolveProject(ctx, projectID)
	if err != nil {
		return err
	}

	if !access.CanProject(userID, project, access.ActionDelete) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("project_id", projectID).
			Msg("delete not allowed")
		return ErrForbidden
	}

	err = s.store.DeleteProject(ctx, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to delete project")
		return err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Msg("deleted project")
	return nil
}

func (s *projectServiceImpl) SearchCollaborator(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().
				Str("email", email).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to select user by email")
		return nil, err
	}
	return user, nil
}

func (s *projectServiceImpl) AddCollaborator(ctx context.Context, userID, projectID, email string) (*models.User, error) {
	project, err := s.resolveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	candidate, err := s.SearchCollaborator(ctx, email)
	if err != nil {
		return nil, err
	}

	if project.IsCollaborator(candidate.ID) {
		s.logger.Error().
			Str("project_id", projectID).
			Str("candidate_id", candidate.ID).
			Msg("user is already a collaborator")
		return nil, ErrAlreadyCollaborator
	}

	if !access.CanProject(userID, project, access.ActionManageCollaborators) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("project_id", projectID).
			Msg("managing collaborators not allowed")
		return nil, ErrForbidden
	}

	if candidate.ID == project.CreatorID {
		s.logger.Error().
			Str("project_id", projectID).
			Msg("creator cannot be a collaborator")
		return nil, ErrCreatorAsCollaborator
	}

	err = s.store.AddCollaborator(ctx, projectID, candidate.ID)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAlreadyCollaborator
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Str("candidate_id", candidate.ID).
			Msg("failed to insert collaborator")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("collaborator_id", candidate.ID).
		Msg("added collaborator")
	return candidate, nil
}

func (s *projectServiceImpl) RemoveCollaborator(ctx context.Context, userID, projectID, collaboratorID string) error {
	_, err := uuid.Parse(collaboratorID)
	if err != nil {
		return ErrInvalidReference
	}

	project, err := s.resolveProject(ctx, projectID)
	if err != nil {
		return err
	}

	if !access.CanProject(userID, project, access.ActionManageCollaborators) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("project_id", projectID).
			Msg("managing collaborators not allowed")
		return ErrForbidden
	}

	// Removing a non-member is accepted as a no-op.
	err = s.store.RemoveCollaborator(ctx, projectID, collaboratorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Str("collaborator_id", collaboratorID).
			Msg("failed to delete collaborator")
		return err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("collaborator_id", collaboratorID).
		Msg("removed collaborator")
	return nil
}

func (s *projectServiceImpl) AuthorizeView(ctx context.Context, userID, projectID string) error {
	project, err := s.resolveProject(ctx, projectID)
	if err != nil {
		return err
	}

	if !access.CanProject(userID, project, access.ActionView) {
		return ErrForbidden
	}
	return nil
}
