package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"factory-floor-backend/internal/model"
)

// GetAnnotationsByMachine handles GET /api/annotations/machine/:machineId.
func (h *Handler) GetAnnotationsByMachine(c *gin.Context) {
	annotations, err := h.store.ListAnnotationsByMachine(c.Request.Context(), c.Param("machineId"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, annotations)
}

type createAnnotationRequest struct {
	Type      string         `json:"type" binding:"required,oneof=LINE RECTANGLE TEXT CIRCLE ARROW"`
	Content   map[string]any `json:"content" binding:"required"`
	MachineID string         `json:"machineId" binding:"required"`
	UserID    string         `json:"userId" binding:"required"`
}

// CreateAnnotation handles POST /api/annotations. The created annotation is
// broadcast to clients joined to the machine's annotation room.
func (h *Handler) CreateAnnotation(c *gin.Context) {
	var req createAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	annotation := model.Annotation{
		Type:      req.Type,
		Content:   req.Content,
		MachineID: req.MachineID,
		UserID:    req.UserID,
	}
	if err := h.store.CreateAnnotation(c.Request.Context(), &annotation); err != nil {
		abortWithStoreError(c, err)
		return
	}

	h.annotations.Created(&annotation)
	c.JSON(http.StatusCreated, annotation)
}

type updateAnnotationRequest struct {
	Content map[string]any `json:"content" binding:"required"`
}

// UpdateAnnotation handles PUT /api/annotations/:id.
func (h *Handler) UpdateAnnotation(c *gin.Context) {
	var req updateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	annotation, err := h.store.UpdateAnnotationContent(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}

	h.annotations.Updated(annotation)
	c.JSON(http.StatusOK, annotation)
}

// DeleteAnnotation handles DELETE /api/annotations/:id. The audit row and
// the broadcast both reference the annotation as it was before deletion.
func (h *Handler) DeleteAnnotation(c *gin.Context) {
	annotation, err := h.store.DeleteAnnotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}

	h.annotations.Deleted(annotation)
	c.JSON(http.StatusOK, annotation)
}
