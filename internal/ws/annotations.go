package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/store"
)

const gatewayTimeout = 5 * time.Second

// AnnotationGateway is the /ws/annotations namespace. Clients join a
// machine-scoped room; mutations on that machine's annotations are broadcast
// only to room members.
type AnnotationGateway struct {
	hub   *Hub
	store store.Store
}

// NewAnnotationGateway creates the annotation gateway.
func NewAnnotationGateway(hub *Hub, s store.Store) *AnnotationGateway {
	return &AnnotationGateway{hub: hub, store: s}
}

func (g *AnnotationGateway) Namespace() string {
	return NamespaceAnnotations
}

func (g *AnnotationGateway) OnDisconnect(c *Client) {}

func (g *AnnotationGateway) HandleEvent(c *Client, env Envelope) {
	switch env.Event {
	case JoinMachine:
		var payload struct {
			MachineID string `json:"machineId"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.MachineID == "" {
			c.SendError("machineId is required")
			return
		}
		g.hub.Join(c, MachineRoom(payload.MachineID))

	case LeaveMachine:
		var payload struct {
			MachineID string `json:"machineId"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.MachineID == "" {
			c.SendError("machineId is required")
			return
		}
		g.hub.Leave(c, MachineRoom(payload.MachineID))

	case CreateAnnotation:
		g.handleCreate(c, env.Data)

	case UpdateAnnotation:
		g.handleUpdate(c, env.Data)

	case DeleteAnnotation:
		g.handleDelete(c, env.Data)

	default:
		c.SendError("unsupported event: " + env.Event)
	}
}

func (g *AnnotationGateway) handleCreate(c *Client, data json.RawMessage) {
	var payload struct {
		Type      string         `json:"type"`
		Content   map[string]any `json:"content"`
		MachineID string         `json:"machineId"`
		UserID    string         `json:"userId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.SendError("malformed createAnnotation payload")
		return
	}
	if !model.ValidAnnotationType(payload.Type) {
		c.SendError("invalid annotation type")
		return
	}
	if payload.Content == nil || payload.MachineID == "" || payload.UserID == "" {
		c.SendError("content, machineId and userId are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	annotation := model.Annotation{
		Type:      payload.Type,
		Content:   payload.Content,
		MachineID: payload.MachineID,
		UserID:    payload.UserID,
	}
	if err := g.store.CreateAnnotation(ctx, &annotation); err != nil {
		log.Printf("ws createAnnotation failed: %v", err)
		c.SendError("failed to create annotation")
		return
	}
	g.Created(&annotation)
}

func (g *AnnotationGateway) handleUpdate(c *Client, data json.RawMessage) {
	var payload struct {
		ID      string         `json:"id"`
		Content map[string]any `json:"content"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.ID == "" || payload.Content == nil {
		c.SendError("id and content are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	annotation, err := g.store.UpdateAnnotationContent(ctx, payload.ID, payload.Content)
	if errors.Is(err, store.ErrNotFound) {
		c.SendError("annotation not found")
		return
	}
	if err != nil {
		log.Printf("ws updateAnnotation failed: %v", err)
		c.SendError("failed to update annotation")
		return
	}
	g.Updated(annotation)
}

func (g *AnnotationGateway) handleDelete(c *Client, data json.RawMessage) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.ID == "" {
		c.SendError("id is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	annotation, err := g.store.DeleteAnnotation(ctx, payload.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.SendError("annotation not found")
		return
	}
	if err != nil {
		log.Printf("ws deleteAnnotation failed: %v", err)
		c.SendError("failed to delete annotation")
		return
	}
	g.Deleted(annotation)
}

// Created broadcasts a new annotation to its machine's room. Also called by
// the REST handler so both surfaces share one fan-out path.
func (g *AnnotationGateway) Created(a *model.Annotation) {
	g.hub.ToRoom(MachineRoom(a.MachineID), AnnotationCreated, a)
}

// Updated broadcasts an updated annotation to its machine's room.
func (g *AnnotationGateway) Updated(a *model.Annotation) {
	g.hub.ToRoom(MachineRoom(a.MachineID), AnnotationUpdated, a)
}

// Deleted broadcasts a deleted annotation to its machine's room.
func (g *AnnotationGateway) Deleted(a *model.Annotation) {
	g.hub.ToRoom(MachineRoom(a.MachineID), AnnotationDeleted, a)
}
