package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Hub is the room registry: it maps project ids to the set of connected
// clients viewing them. Membership mutations and broadcast snapshots
// are serialized behind one mutex. The hub is owned by the server and
// injected into the connection handlers; it is not ambient state.
type Hub struct {
	logger zerolog.Logger

	mu      sync.Mutex
	clients map[string]*Client
	rooms   map[string]map[*Client]struct{}
	closed  bool
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		c.close()
		return
	}
	h.clients[c.ID] = c
	h.logger.Debug().
		Str("client_id", c.ID).
		Str("user_id", c.UserID).
		Msg("registered client")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for projectID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, projectID)
		}
	}
	c.close()
	h.logger.Debug().
		Str("client_id", c.ID).
		Msg("unregistered client")
}

// Join subscribes the client to a project room. Authorization happens
// before this call, in the connection's message loop.
func (h *Hub) Join(c *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	members, ok := h.rooms[projectID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[projectID] = members
	}
	members[c] = struct{}{}
	h.logger.Debug().
		Str("client_id", c.ID).
		Str("project_id", projectID).
		Msg("client joined room")
}

func (h *Hub) Leave(c *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[projectID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, projectID)
	}
}

// Broadcast delivers the event to every client in the project's room
// except the one identified by originClientID. Delivery is best-effort:
// a client whose send queue is full is dropped from the hub rather than
// allowed to stall the relay, and failures never propagate to the
// mutation that triggered the event.
func (h *Hub) Broadcast(projectID, event string, payload any, originClientID string) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", event).
			Msg("failed to marshal event payload")
		return
	}

	frame, err := json.Marshal(Envelope{
		Event:   event,
		Project: projectID,
		Payload: raw,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", event).
			Msg("failed to marshal event envelope")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for c := range h.rooms[projectID] {
		if c.ID == originClientID {
			continue
		}
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}

	for _, c := range slow {
		h.logger.Warn().
			Str("client_id", c.ID).
			Str("project_id", projectID).
			Msg("dropping client with full send queue")
		h.unregisterLocked(c)
	}
}

// Close drops every client. Called on server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, c := range h.clients {
		h.unregisterLocked(c)
	}
}
