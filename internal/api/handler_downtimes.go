package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"factory-floor-backend/internal/model"
)

// GetDowntimes handles GET /api/downtimes.
func (h *Handler) GetDowntimes(c *gin.Context) {
	downtimes, err := h.store.ListDowntimes(c.Request.Context())
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, downtimes)
}

// GetDowntimesByMachine handles GET /api/downtimes/machine/:machineId.
func (h *Handler) GetDowntimesByMachine(c *gin.Context) {
	downtimes, err := h.store.ListDowntimesByMachine(c.Request.Context(), c.Param("machineId"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, downtimes)
}

type createDowntimeRequest struct {
	MachineID string     `json:"machineId" binding:"required"`
	Reason    string     `json:"reason" binding:"required"`
	StartTime time.Time  `json:"startTime" binding:"required"`
	EndTime   *time.Time `json:"endTime"`
	Notes     string     `json:"notes"`
	UserID    string     `json:"userId" binding:"required"`
}

// CreateDowntime handles POST /api/downtimes. The duration is computed
// server-side and only when an end time is supplied.
func (h *Handler) CreateDowntime(c *gin.Context) {
	var req createDowntimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	downtime := model.Downtime{
		MachineID: req.MachineID,
		Reason:    req.Reason,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
		UserID:    req.UserID,
	}
	if err := h.store.CreateDowntime(c.Request.Context(), &downtime); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, downtime)
}

type closeDowntimeRequest struct {
	EndTime time.Time `json:"endTime" binding:"required"`
}

// CloseDowntime handles PATCH /api/downtimes/:id/close. Fails if the
// downtime is already closed.
func (h *Handler) CloseDowntime(c *gin.Context) {
	var req closeDowntimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	downtime, err := h.store.CloseDowntime(c.Request.Context(), c.Param("id"), req.EndTime)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, downtime)
}
