package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/uptask/uptask-server/internal/realtime"
)

// HandleWebsocket authenticates the session, upgrades the connection
// and hands it to the hub. Browsers cannot set headers on websocket
// requests, so the token travels in a query parameter.
func (h *handlerImpl) HandleWebsocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.logger.Error().Msg("no token provided")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ParseJWTToken(token)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.auth.UserByID(c, claims.Subject)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", claims.Subject).
			Msg("token subject not found")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.frontendURL
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to upgrade connection")
		return
	}

	client := realtime.NewClient(h.hub, conn, user.ID, h.projects.AuthorizeView)
	h.logger.Info().
		Str("client_id", client.ID).
		Str("user_id", user.ID).
		Msg("websocket connected")

	go client.WritePump()
	// The hijacked connection outlives the request, so its context
	// cannot be the request one.
	go client.ReadPump(context.Background())
}
