package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dm-chat/internal/service/presence"
)

type PresenceHandler struct {
	registry *presence.Registry
}

func NewPresenceHandler(registry *presence.Registry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

func (h *PresenceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"users":  h.registry.Snapshot(),
		"online": h.registry.Online(),
	})
}
