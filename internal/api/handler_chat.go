package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetChatByMachine handles GET /api/chat/machine/:machineId. Messages are
// returned in chronological order; the optional limit query bounds the
// window to the latest N messages (default 50). Message creation is
// WebSocket-only.
func (h *Handler) GetChatByMachine(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	messages, err := h.store.ListChatByMachine(c.Request.Context(), c.Param("machineId"), limit)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
