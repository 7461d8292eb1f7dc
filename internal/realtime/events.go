// Package realtime keeps every viewer of a project consistent without
// polling. Connections join a room keyed by project id and receive the
// task events produced by committed mutations.
package realtime

import "encoding/json"

const (
	// Server-to-client events.
	EventConnected             = "connected"
	EventError                 = "error"
	EventTaskAdded             = "task-added"
	EventTaskRemoved           = "task-removed"
	EventTaskEdited            = "task-edited"
	EventTaskCompletionChanged = "task-completion-changed"

	// Client-to-server events.
	eventJoinRoom  = "join-room"
	eventLeaveRoom = "leave-room"
)

// Envelope is the wire frame for every server-to-client message.
type Envelope struct {
	Event   string          `json:"event"`
	Project string          `json:"project,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// clientMessage is what clients send: joining or leaving a project room.
type clientMessage struct {
	Event   string `json:"event"`
	Project string `json:"project"`
}

type connectedPayload struct {
	ClientID string `json:"clientId"`
}

type errorPayload struct {
	Message string `json:"message"`
}
