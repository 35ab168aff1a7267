package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProductionLines handles GET /api/production-lines.
func (h *Handler) GetProductionLines(c *gin.Context) {
	lines, err := h.store.ListProductionLines(c.Request.Context())
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// GetProductionLine handles GET /api/production-lines/:id.
func (h *Handler) GetProductionLine(c *gin.Context) {
	line, err := h.store.GetProductionLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}
