package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	// A connection this far behind gets dropped instead of stalling
	// the relay.
	sendQueueSize = 32
)

// JoinAuthorizer decides whether a user may view a project before the
// connection is subscribed to its room.
type JoinAuthorizer func(ctx context.Context, userID, projectID string) error

// Client is one authenticated viewer session. Inbound client events are
// handled by ReadPump; relay-delivered events go out through a bounded
// send queue drained by WritePump.
type Client struct {
	ID     string
	UserID string

	hub       *Hub
	conn      *websocket.Conn
	authorize JoinAuthorizer
	send      chan []byte

	done     chan struct{}
	doneOnce sync.Once
}

// NewClient registers a connection with the hub and announces the
// assigned client id to its own peer, so later REST mutations can
// identify this connection as the originator.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, authorize JoinAuthorizer) *Client {
	c := &Client{
		ID:        uuid.NewString(),
		UserID:    userID,
		hub:       hub,
		conn:      conn,
		authorize: authorize,
		send:      make(chan []byte, sendQueueSize),
		done:      make(chan struct{}),
	}
	hub.register(c)
	c.enqueue(Envelope{
		Event:   EventConnected,
		Payload: mustMarshal(connectedPayload{ClientID: c.ID}),
	})
	return c
}

// close signals the write pump to finish. The send channel itself stays
// open so a concurrent broadcast can never hit a closed channel.
func (c *Client) close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) enqueue(env Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		c.hub.logger.Error().
			Err(err).
			Str("event", env.Event).
			Msg("failed to marshal envelope")
		return
	}
	select {
	case c.send <- frame:
	default:
		// Queue full; the next broadcast will drop this client.
	}
}

func (c *Client) sendError(message string) {
	c.enqueue(Envelope{
		Event:   EventError,
		Payload: mustMarshal(errorPayload{Message: message}),
	})
}

// ReadPump handles inbound client events until the connection drops,
// then removes the client from every room it joined.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn().
					Err(err).
					Str("client_id", c.ID).
					Msg("websocket read failed")
			}
			return
		}
		c.handleMessage(ctx, raw)
	}
}

func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg clientMessage
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		c.sendError("malformed message")
		return
	}

	switch msg.Event {
	case eventJoinRoom:
		// Joining re-runs the view permission check so events never
		// leak to a connection that may not see the project.
		err = c.authorize(ctx, c.UserID, msg.Project)
		if err != nil {
			c.hub.logger.Warn().
				Err(err).
				Str("client_id", c.ID).
				Str("project_id", msg.Project).
				Msg("room join refused")
			c.sendError("cannot join room")
			return
		}
		c.hub.Join(c, msg.Project)
	case eventLeaveRoom:
		c.hub.Leave(c, msg.Project)
	default:
		c.sendError("unknown event")
	}
}

// WritePump drains the send queue to the connection, FIFO, and keeps
// the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.TextMessage, frame)
			if err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// Payload types here are plain structs; this cannot fail.
		panic(err)
	}
	return raw
}
