// Package access holds the permission rules for projects and tasks.
// The evaluator is stateless: callers resolve the records first, then
// ask whether an identity may act on them.
package access

import "github.com/uptask/uptask-server/internal/models"

type Action string

const (
	ActionView                Action = "view"
	ActionEdit                Action = "edit"
	ActionDelete              Action = "delete"
	ActionManageCollaborators Action = "manage-collaborators"
	ActionToggleCompletion    Action = "toggle-completion"
)

// CanProject reports whether the user may perform action on the project.
// Viewing is open to the creator and collaborators; everything else is
// creator-only.
func CanProject(userID string, project *models.Project, action Action) bool {
	switch action {
	case ActionView:
		return project.IsCreator(userID) || project.IsCollaborator(userID)
	case ActionEdit, ActionDelete, ActionManageCollaborators:
		return project.IsCreator(userID)
	}
	return false
}

// CanTask reports whether the user may perform action on a task that
// belongs to project. Task metadata is creator-only; toggling the
// completion flag is open to collaborators as well.
func CanTask(userID string, project *models.Project, action Action) bool {
	switch action {
	case ActionView, ActionEdit, ActionDelete:
		return project.IsCreator(userID)
	case ActionToggleCompletion:
		return project.IsCreator(userID) || project.IsCollaborator(userID)
	}
	return false
}
