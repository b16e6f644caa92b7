package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/orator/internal/server"
)

const sseKeepAliveInterval = 15 * time.Second

// Events streams a file's progress as server-sent events until the file
// reaches a terminal stage or the client disconnects. Clients that only need
// the final state can poll GET /api/files/:id instead.
func (h *Handler) Events(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.processor.Get(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}

	events, cancel := h.hub.Subscribe(id)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		case data, ok := <-events:
			if !ok {
				return
			}
			if _, err := c.Writer.WriteString("data: " + string(data) + "\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
