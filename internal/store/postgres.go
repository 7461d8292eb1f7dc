package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/uptask/uptask-server/internal/models"
)

type postgresStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgres(logger zerolog.Logger, pgPool *pgxpool.Pool) Store {
	return &postgresStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *postgresStore) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   name,
                   email,
                   password,
                   token,
                   confirmed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.Token,
		user.Confirmed,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

const selectUserColumns = `
SELECT id,
       name,
       email,
       password,
       token,
       confirmed,
       created_at,
       updated_at
FROM users
`

func (s *postgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Token,
		&user.Confirmed,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to scan user")
		return nil, err
	}
	return &user, nil
}

func (s *postgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	const query = selectUserColumns + `WHERE id = $1`
	return s.scanUser(s.pgPool.QueryRow(ctx, query, id))
}

func (s *postgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = selectUserColumns + `WHERE email = $1`
	return s.scanUser(s.pgPool.QueryRow(ctx, query, email))
}

func (s *postgresStore) FindUserByToken(ctx context.Context, token string) (*models.User, error) {
	const query = selectUserColumns + `WHERE token = $1 AND token <> ''`
	return s.scanUser(s.pgPool.QueryRow(ctx, query, token))
}

func (s *postgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	const updateUserQuery = `
UPDATE users
SET name = $1,
    password = $2,
    token = $3,
    confirmed = $4,
    updated_at = $5
WHERE id = $6
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateUserQuery,
		user.Name,
		user.Password,
		user.Token,
		user.Confirmed,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) CreateProject(ctx context.Context, project *models.Project) error {
	const insertProjectQuery = `
INSERT INTO projects (id,
                      name,
                      description,
                      client,
                      creator_id,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertProjectQuery,
		project.ID,
		project.Name,
		project.Description,
		project.Client,
		project.CreatorID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert project")
		return err
	}
	s.logger.Debug().
		Str("project_id", project.ID).
		Msg("inserted project")
	return nil
}

func (s *postgresStore) FindProject(ctx context.Context, id string) (*models.Project, error) {
	const selectProjectQuery = `
SELECT id,
       name,
       description,
       client,
       creator_id,
       created_at,
       updated_at
FROM projects
WHERE id = $1
`
	var project models.Project
	err := s.pgPool.QueryRow(
		ctx,
		selectProjectQuery,
		id,
	).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Client,
		&project.CreatorID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to select project")
		return nil, err
	}

	const selectCollaboratorsQuery = `
SELECT u.id,
       u.name,
       u.email
FROM project_collaborators pc
JOIN users u ON u.id = pc.user_id
WHERE pc.project_id = $1
`
	rows, err := s.pgPool.Query(ctx, selectCollaboratorsQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to select collaborators")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		err = rows.Scan(&user.ID, &user.Name, &user.Email)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan collaborator")
			return nil, err
		}
		project.Collaborators = append(project.Collaborators, user)
	}
	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over collaborators")
		return nil, err
	}

	const selectTaskIDsQuery = `
SELECT id
FROM tasks
WHERE project_id = $1
ORDER BY created_at
`
	rows, err = s.pgPool.Query(ctx, selectTaskIDsQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to select task ids")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		err = rows.Scan(&taskID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task id")
			return nil, err
		}
		project.TaskIDs = append(project.TaskIDs, taskID)
	}
	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over task ids")
		return nil, err
	}

	return &project, nil
}

func (s *postgresStore) FindProjectsByMember(ctx context.Context, userID string) ([]*models.Project, error) {
	const selectProjectsQuery = `
SELECT DISTINCT p.id,
                p.name,
                p.description,
                p.client,
                p.creator_id,
                p.created_at,
                p.updated_at
FROM projects p
LEFT JOIN project_collaborators pc ON pc.project_id = p.id
WHERE p.creator_id = $1 OR pc.user_id = $1
ORDER BY p.created_at DESC
`
	rows, err := s.pgPool.Query(ctx, selectProjectsQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select projects by member")
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		err = rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Client,
			&project.CreatorID,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan project")
			return nil, err
		}
		projects = append(projects, &project)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over projects")
		return nil, err
	}
	return projects, nil
}

func (s *postgresStore) UpdateProject(ctx context.Context, project *models.Project) error {
	const updateProjectQuery = `
UPDATE projects
SET name = $1,
    description = $2,
    client = $3,
    updated_at = $4
WHERE id = $5
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateProjectQuery,
		project.Name,
		project.Description,
		project.Client,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to update project")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) DeleteProject(ctx context.Context, id string) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteTasksQuery = `DELETE FROM tasks WHERE project_id = $1`
	_, err = tx.Exec(ctx, deleteTasksQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to delete project tasks")
		return err
	}

	const deleteCollaboratorsQuery = `DELETE FROM project_collaborators WHERE project_id = $1`
	_, err = tx.Exec(ctx, deleteCollaboratorsQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to delete project collaborators")
		return err
	}

	const deleteProjectQuery = `DELETE FROM projects WHERE id = $1`
	tag, err := tx.Exec(ctx, deleteProjectQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to delete project")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	s.logger.Debug().
		Str("project_id", id).
		Msg("deleted project")
	return nil
}

func (s *postgresStore) AddCollaborator(ctx context.Context, projectID, userID string) error {
	const insertCollaboratorQuery = `
INSERT INTO project_collaborators (project_id, user_id)
VALUES ($1, $2)
`
	_, err := s.pgPool.Exec(ctx, insertCollaboratorQuery, projectID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Str("user_id", userID).
			Msg("failed to insert collaborator")
		return err
	}
	return nil
}

func (s *postgresStore) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	const deleteCollaboratorQuery = `
DELETE FROM project_collaborators
WHERE project_id = $1 AND user_id = $2
`
	_, err := s.pgPool.Exec(ctx, deleteCollaboratorQuery, projectID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Str("user_id", userID).
			Msg("failed to delete collaborator")
		return err
	}
	return nil
}

func (s *postgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   project_id,
                   name,
                   description,
                   priority,
                   due_date,
                   done,
                   completed_by,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err = tx.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.ProjectID,
		task.Name,
		task.Description,
		task.Priority,
		task.DueDate,
		task.Done,
		nullableID(task.CompletedByID),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}

	const touchProjectQuery = `UPDATE projects SET updated_at = $1 WHERE id = $2`
	tag, err := tx.Exec(ctx, touchProjectQuery, task.UpdatedAt, task.ProjectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", task.ProjectID).
			Msg("failed to update parent project")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Str("project_id", task.ProjectID).
		Msg("inserted task")
	return nil
}

func (s *postgresStore) FindTask(ctx context.Context, id string) (*models.Task, error) {
	const selectTaskQuery = `
SELECT t.id,
       t.project_id,
       t.name,
       t.description,
       t.priority,
       t.due_date,
       t.done,
       COALESCE(t.completed_by::text, ''),
       u.name,
       u.email,
       t.created_at,
       t.updated_at
FROM tasks t
LEFT JOIN users u ON u.id = t.completed_by
WHERE t.id = $1
`
	var (
		task           models.Task
		completedName  *string
		completedEmail *string
	)
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		id,
	).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Name,
		&task.Description,
		&task.Priority,
		&task.DueDate,
		&task.Done,
		&task.CompletedByID,
		&completedName,
		&completedEmail,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task")
		return nil, err
	}

	if task.CompletedByID != "" && completedName != nil {
		task.CompletedBy = &models.User{
			ID:    task.CompletedByID,
			Name:  *completedName,
			Email: *completedEmail,
		}
	}
	return &task, nil
}

func (s *postgresStore) FindTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT t.id,
       t.name,
       t.description,
       t.priority,
       t.due_date,
       t.done,
       COALESCE(t.completed_by::text, ''),
       u.name,
       u.email,
       t.created_at,
       t.updated_at
FROM tasks t
LEFT JOIN users u ON u.id = t.completed_by
WHERE t.project_id = $1
ORDER BY t.created_at
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select tasks by project")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{ProjectID: projectID}
		var completedName, completedEmail *string
		err = rows.Scan(
			&task.ID,
			&task.Name,
			&task.Description,
			&task.Priority,
			&task.DueDate,
			&task.Done,
			&task.CompletedByID,
			&completedName,
			&completedEmail,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		if task.CompletedByID != "" && completedName != nil {
			task.CompletedBy = &models.User{
				ID:    task.CompletedByID,
				Name:  *completedName,
				Email: *completedEmail,
			}
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over tasks")
		return nil, err
	}
	return tasks, nil
}

func (s *postgresStore) UpdateTask(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET name = $1,
    description = $2,
    priority = $3,
    due_date = $4,
    done = $5,
    completed_by = $6,
    updated_at = $7
WHERE id = $8
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Name,
		task.Description,
		task.Priority,
		task.DueDate,
		task.Done,
		nullableID(task.CompletedByID),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteTaskQuery = `
DELETE FROM tasks WHERE id = $1
RETURNING project_id
`
	var projectID string
	err = tx.QueryRow(ctx, deleteTaskQuery, id).Scan(&projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}

	const touchProjectQuery = `UPDATE projects SET updated_at = now() WHERE id = $1`
	_, err = tx.Exec(ctx, touchProjectQuery, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to update parent project")
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

// nullableID maps the empty string to NULL for uuid columns.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
