package access

import (
	"testing"

	"github.com/uptask/uptask-server/internal/models"
)

const (
	creatorID      = "creator"
	collaboratorID = "collaborator"
	strangerID     = "stranger"
)

func testProject() *models.Project {
	return &models.Project{
		ID:        "p1",
		CreatorID: creatorID,
		Collaborators: []models.User{
			{ID: collaboratorID, Name: "Collab", Email: "collab@example.com"},
		},
	}
}

func TestCanProject(t *testing.T) {
	project := testProject()

	cases := []struct {
		name   string
		userID string
		action Action
		want   bool
	}{
		{"creator views", creatorID, ActionView, true},
		{"collaborator views", collaboratorID, ActionView, true},
		{"stranger views", strangerID, ActionView, false},
		{"creator edits", creatorID, ActionEdit, true},
		{"collaborator edits", collaboratorID, ActionEdit, false},
		{"creator deletes", creatorID, ActionDelete, true},
		{"collaborator deletes", collaboratorID, ActionDelete, false},
		{"creator manages collaborators", creatorID, ActionManageCollaborators, true},
		{"collaborator manages collaborators", collaboratorID, ActionManageCollaborators, false},
		{"stranger manages collaborators", strangerID, ActionManageCollaborators, false},
		{"unknown action", creatorID, Action("publish"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanProject(tc.userID, project, tc.action)
			if got != tc.want {
				t.Fatalf("CanProject(%q, %q) = %v, want %v", tc.userID, tc.action, got, tc.want)
			}
		})
	}
}

func TestCanTask(t *testing.T) {
	project := testProject()

	cases := []struct {
		name   string
		userID string
		action Action
		want   bool
	}{
		{"creator views", creatorID, ActionView, true},
		{"collaborator views", collaboratorID, ActionView, false},
		{"creator edits", creatorID, ActionEdit, true},
		{"collaborator edits", collaboratorID, ActionEdit, false},
		{"creator deletes", creatorID, ActionDelete, true},
		{"collaborator deletes", collaboratorID, ActionDelete, false},
		{"creator toggles", creatorID, ActionToggleCompletion, true},
		{"collaborator toggles", collaboratorID, ActionToggleCompletion, true},
		{"stranger toggles", strangerID, ActionToggleCompletion, false},
		{"unknown action", creatorID, Action("assign"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanTask(tc.userID, project, tc.action)
			if got != tc.want {
				t.Fatalf("CanTask(%q, %q) = %v, want %v", tc.userID, tc.action, got, tc.want)
			}
		})
	}
}
