package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"factory-floor-backend/internal/status"
	"factory-floor-backend/internal/store"
	"factory-floor-backend/internal/ws"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	status      *status.Service
	annotations *ws.AnnotationGateway
	webpush     *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, statusSvc *status.Service, annotations *ws.AnnotationGateway, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:       s,
		status:      statusSvc,
		annotations: annotations,
		webpush:     webpushOptions,
	}
}

// abortWithStoreError maps store sentinel errors to HTTP statuses.
func abortWithStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrDowntimeClosed):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "downtime already closed"})
	case errors.Is(err, store.ErrEndBeforeStart):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "end time must not be before start time"})
	case errors.Is(err, store.ErrUsernameTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "username already taken"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
