package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizmatch/backend/internal/game"
	"quizmatch/backend/internal/hub"
)

// StreamEvents godoc
// @Summary      Open the real-time event stream
// @Description  Server-sent events channel for one connection. The first event carries the assigned connection id; closing the stream counts as a disconnect.
// @Tags         stream
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Router       /stream [get]
func StreamEvents(c *gin.Context) {
	connectionID := uuid.NewString()
	client := hub.GlobalHub.Register(connectionID)

	defer func() {
		Coordinator.HandleDisconnect(connectionID)
		hub.GlobalHub.Unregister(connectionID)
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	hub.GlobalHub.Send(connectionID, hub.Event{
		Type:    game.EventConnected,
		Payload: map[string]string{"connection_id": connectionID},
	})

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(message))
			return true
		}
	})
}
