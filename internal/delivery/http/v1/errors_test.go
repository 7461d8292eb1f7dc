package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uptask/uptask-server/internal/models"
	"github.com/uptask/uptask-server/internal/services"
)

func TestAbortServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid reference", services.ErrInvalidReference, http.StatusBadRequest},
		{"invalid priority", services.ErrInvalidPriority, http.StatusBadRequest},
		{"project not found", services.ErrProjectNotFound, http.StatusNotFound},
		{"task not found", services.ErrTaskNotFound, http.StatusNotFound},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound},
		{"token not found", services.ErrTokenNotFound, http.StatusNotFound},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"already collaborator", services.ErrAlreadyCollaborator, http.StatusConflict},
		{"creator as collaborator", services.ErrCreatorAsCollaborator, http.StatusConflict},
		{"user already exists", services.ErrUserAlreadyExists, http.StatusConflict},
		{"unclassified", errors.New("pool exhausted"), http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			abortServiceError(c, testCase.err)

			if recorder.Code != testCase.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, testCase.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatalf("malformed body: %v", err)
			}
			if body["error"] == "" {
				t.Fatal("no error message in body")
			}
			// Backend failures never leak their cause to clients.
			if testCase.wantStatus == http.StatusInternalServerError && body["error"] != http.StatusText(http.StatusInternalServerError) {
				t.Fatalf("internal error leaked: %q", body["error"])
			}
		})
	}
}

func TestTaskResponseShape(t *testing.T) {
	now := time.Now()
	task := &models.Task{
		ID:            "t1",
		ProjectID:     "p1",
		Name:          "Ship it",
		Description:   "Cut the release",
		Priority:      models.PriorityHigh,
		DueDate:       now,
		Done:          true,
		CompletedByID: "u1",
		CompletedBy:   &models.User{ID: "u1", Name: "Ana", Email: "ana@example.com"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	raw, err := json.Marshal(newTaskResponse(task))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err = json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(decoded["estado"]) != "true" {
		t.Fatalf("estado = %s, want true", decoded["estado"])
	}
	if string(decoded["project"]) != `"p1"` {
		t.Fatalf("project = %s, want \"p1\"", decoded["project"])
	}
	var completedBy userResponse
	if err = json.Unmarshal(decoded["completado"], &completedBy); err != nil {
		t.Fatalf("completado missing or malformed: %v", err)
	}
	if completedBy.ID != "u1" {
		t.Fatalf("completado.id = %q, want u1", completedBy.ID)
	}

	// An open task carries no completed-by user at all.
	task.Done = false
	task.CompletedBy = nil
	raw, err = json.Marshal(newTaskResponse(task))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded = nil
	if err = json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := decoded["completado"]; ok {
		t.Fatal("open task still carries completado")
	}
}
