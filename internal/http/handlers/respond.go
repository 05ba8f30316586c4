package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/internal/http/middleware"
)

// respond writes the standard page envelope: the payload under "data"
// and any queued flash notices drained alongside it, so a notice from a
// redirecting operation shows up exactly once, on the next render.
func respond(c *gin.Context, status int, data gin.H) {
	payload := gin.H{"data": data}
	if notices := middleware.Notifier(c).Drain(c.Request.Context()); len(notices) > 0 {
		payload["notices"] = notices
	}
	c.JSON(status, payload)
}
