package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestProjectService(f *fakeStore) ProjectService {
	return NewProjectService(zerolog.Nop(), f)
}

func TestCreateProject_ActingUserBecomesCreator(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name:        "Launch",
		Description: "Release prep",
		Client:      "ACME",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.CreatorID != creator.ID {
		t.Fatalf("creator = %q, want %q", project.CreatorID, creator.ID)
	}
	if len(project.Collaborators) != 0 {
		t.Fatalf("new project has %d collaborators, want 0", len(project.Collaborators))
	}
}

func TestAddCollaborator(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	collab := f.seedUser("Collab", "collab@example.com")
	stranger := f.seedUser("Stranger", "stranger@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "P", Description: "D", Client: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	added, err := svc.AddCollaborator(context.Background(), creator.ID, project.ID, collab.Email)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if added.ID != collab.ID {
		t.Fatalf("added %q, want %q", added.ID, collab.ID)
	}

	// Second add of the same user is a conflict, not a no-op.
	_, err = svc.AddCollaborator(context.Background(), creator.ID, project.ID, collab.Email)
	if !errors.Is(err, ErrAlreadyCollaborator) {
		t.Fatalf("second add = %v, want ErrAlreadyCollaborator", err)
	}

	// The creator can never join their own collaborator set.
	_, err = svc.AddCollaborator(context.Background(), creator.ID, project.ID, creator.Email)
	if !errors.Is(err, ErrCreatorAsCollaborator) {
		t.Fatalf("self add = %v, want ErrCreatorAsCollaborator", err)
	}

	_, err = svc.AddCollaborator(context.Background(), stranger.ID, project.ID, stranger.Email)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-creator add = %v, want ErrForbidden", err)
	}

	_, err = svc.AddCollaborator(context.Background(), creator.ID, project.ID, "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown email = %v, want ErrUserNotFound", err)
	}

	_, err = svc.AddCollaborator(context.Background(), creator.ID, "not-a-uuid", collab.Email)
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("malformed project id = %v, want ErrInvalidReference", err)
	}

	_, err = svc.AddCollaborator(context.Background(), creator.ID, uuid.NewString(), collab.Email)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown project = %v, want ErrProjectNotFound", err)
	}

	// The invariant held throughout.
	stored, err := f.FindProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.IsCollaborator(creator.ID) {
		t.Fatal("creator ended up in the collaborator set")
	}
}

func TestRemoveCollaborator(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	collab := f.seedUser("Collab", "collab@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "P", Description: "D", Client: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = svc.AddCollaborator(context.Background(), creator.ID, project.ID, collab.Email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = svc.RemoveCollaborator(context.Background(), collab.ID, project.ID, collab.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("collaborator removing themselves = %v, want ErrForbidden", err)
	}

	err = svc.RemoveCollaborator(context.Background(), creator.ID, project.ID, collab.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	stored, err := f.FindProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.IsCollaborator(collab.ID) {
		t.Fatal("collaborator still present after removal")
	}

	// Removing a non-member is accepted as a no-op.
	err = svc.RemoveCollaborator(context.Background(), creator.ID, project.ID, collab.ID)
	if err != nil {
		t.Fatalf("removing a non-member = %v, want nil", err)
	}
}

func TestEditProject_PatchSemantics(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "Old name", Description: "Old description", Client: "Old client",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newName := "New name"
	empty := ""
	updated, err := svc.EditProject(context.Background(), creator.ID, project.ID, EditProjectParams{
		Name:   &newName,
		Client: &empty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Name != newName {
		t.Fatalf("name = %q, want %q", updated.Name, newName)
	}
	// Omitted fields keep their value; explicitly supplied empty
	// strings replace.
	if updated.Description != "Old description" {
		t.Fatalf("description = %q, want unchanged", updated.Description)
	}
	if updated.Client != "" {
		t.Fatalf("client = %q, want cleared", updated.Client)
	}
}

func TestEditProject_PersistenceFailure(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "Old name", Description: "D", Client: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.failUpdateProject = true

	name := "New name"
	_, err = svc.EditProject(context.Background(), creator.ID, project.ID, EditProjectParams{Name: &name})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("edit = %v, want the store error surfaced", err)
	}

	f.failUpdateProject = false
	stored, err := f.FindProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Name != "Old name" {
		t.Fatalf("name = %q, want unchanged after failed edit", stored.Name)
	}
}

func TestGetProject_Permissions(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	collab := f.seedUser("Collab", "collab@example.com")
	stranger := f.seedUser("Stranger", "stranger@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "P", Description: "D", Client: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = svc.AddCollaborator(context.Background(), creator.ID, project.ID, collab.Email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err = svc.GetProject(context.Background(), creator.ID, project.ID); err != nil {
		t.Fatalf("creator view failed: %v", err)
	}
	if _, err = svc.GetProject(context.Background(), collab.ID, project.ID); err != nil {
		t.Fatalf("collaborator view failed: %v", err)
	}
	if _, err = svc.GetProject(context.Background(), stranger.ID, project.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger view = %v, want ErrForbidden", err)
	}

	// A nonexistent project never reaches the permission check.
	_, err = svc.GetProject(context.Background(), stranger.ID, uuid.NewString())
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown project = %v, want ErrProjectNotFound", err)
	}
}

func TestAuthorizeView(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	stranger := f.seedUser("Stranger", "stranger@example.com")
	svc := newTestProjectService(f)

	project, err := svc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "P", Description: "D", Client: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = svc.AuthorizeView(context.Background(), creator.ID, project.ID); err != nil {
		t.Fatalf("creator join refused: %v", err)
	}
	if err = svc.AuthorizeView(context.Background(), stranger.ID, project.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger join = %v, want ErrForbidden", err)
	}
	if err = svc.AuthorizeView(context.Background(), creator.ID, "nope"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("malformed id = %v, want ErrInvalidReference", err)
	}
}

func TestDeleteProject_Cascades(t *testing.T) {
	f := newFakeStore()
	creator := f.seedUser("Creator", "creator@example.com")
	stranger := f.seedUser("Stranger", "stranger@example.com")
	projectSvc := newTestProjectService(f)
	taskSvc := NewTaskService(zerolog.Nop(), f)

	project, err := projectSvc.CreateProject(context.Background(), creator.ID, CreateProjectParams{
		Name: "P", Description: "D", Client: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, err := taskSvc.CreateTask(context.Background(), creator.ID, CreateTaskParams{
		ProjectID: project.ID, Name: "T", Description: "D",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = projectSvc.DeleteProject(context.Background(), stranger.ID, project.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete = %v, want ErrForbidden", err)
	}
	if err = projectSvc.DeleteProject(context.Background(), creator.ID, project.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err = f.FindProject(context.Background(), project.ID); err == nil {
		t.Fatal("project still findable after deletion")
	}
	if _, err = f.FindTask(context.Background(), task.ID); err == nil {
		t.Fatal("task survived its project's deletion")
	}
}
