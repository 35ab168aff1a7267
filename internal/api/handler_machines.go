package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"factory-floor-backend/internal/model"
)

// GetMachines handles GET /api/machines.
func (h *Handler) GetMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachine handles GET /api/machines/:id.
func (h *Handler) GetMachine(c *gin.Context) {
	machine, err := h.store.GetMachine(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

type createMachineRequest struct {
	Name             string `json:"name" binding:"required"`
	Code             string `json:"code" binding:"required"`
	SchemaImageURL   string `json:"schemaImageUrl"`
	ProductionLineID string `json:"productionLineId" binding:"required"`
}

// CreateMachine handles POST /api/machines. The route is role-gated to
// ADMIN/ENGINEER.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine := model.Machine{
		Name:             req.Name,
		Code:             req.Code,
		SchemaImageURL:   req.SchemaImageURL,
		ProductionLineID: req.ProductionLineID,
	}
	if err := h.store.CreateMachine(c.Request.Context(), &machine); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=NORMAL WARNING FAILURE MAINTENANCE"`
}

// UpdateMachineStatus handles PATCH /api/machines/:id/status. The mutation
// runs through the status propagator so it is audited and broadcast.
func (h *Handler) UpdateMachineStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of NORMAL, WARNING, FAILURE, MAINTENANCE"})
		return
	}

	machine, err := h.status.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}
