package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/store"
)

type chatSession struct {
	machineID string
	userID    string
}

// ChatGateway is the /ws/chat namespace: machine-scoped operator chat with
// history replay on join and typing relays.
type ChatGateway struct {
	hub   *Hub
	store store.Store

	mu       sync.Mutex
	sessions map[*Client]chatSession
}

// NewChatGateway creates the chat gateway.
func NewChatGateway(hub *Hub, s store.Store) *ChatGateway {
	return &ChatGateway{
		hub:      hub,
		store:    s,
		sessions: make(map[*Client]chatSession),
	}
}

func (g *ChatGateway) Namespace() string {
	return NamespaceChat
}

func (g *ChatGateway) HandleEvent(c *Client, env Envelope) {
	switch env.Event {
	case JoinMachineChat:
		g.handleJoin(c, env.Data)
	case LeaveMachineChat:
		g.handleLeave(c)
	case SendMessage:
		g.handleSendMessage(c, env.Data)
	case UserTyping:
		g.handleTyping(c, env.Data)
	default:
		c.SendError("unsupported event: " + env.Event)
	}
}

// OnDisconnect logs the audit row for clients that dropped without leaving.
func (g *ChatGateway) OnDisconnect(c *Client) {
	g.handleLeave(c)
}

func (g *ChatGateway) handleJoin(c *Client, data json.RawMessage) {
	var payload struct {
		MachineID string `json:"machineId"`
		UserID    string `json:"userId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.MachineID == "" || payload.UserID == "" {
		c.SendError("machineId and userId are required")
		return
	}

	// A client holds one chat session at a time. Joining again ends the
	// previous session first so its room and audit trail are closed out.
	g.handleLeave(c)

	g.hub.Join(c, MachineRoom(payload.MachineID))
	g.mu.Lock()
	g.sessions[c] = chatSession{machineID: payload.MachineID, userID: payload.UserID}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	history, err := g.store.ListChatByMachine(ctx, payload.MachineID, store.DefaultChatHistoryLimit)
	if err != nil {
		log.Printf("ws chat history failed for machine %s: %v", payload.MachineID, err)
		c.SendError("failed to load chat history")
	} else {
		c.Send(ChatHistory, history)
	}

	g.logPresence(ctx, model.EventUserConnected, payload.MachineID, payload.UserID)
}

func (g *ChatGateway) handleLeave(c *Client) {
	g.mu.Lock()
	session, ok := g.sessions[c]
	delete(g.sessions, c)
	g.mu.Unlock()
	if !ok {
		return
	}

	g.hub.Leave(c, MachineRoom(session.machineID))

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()
	g.logPresence(ctx, model.EventUserDisconnected, session.machineID, session.userID)
}

func (g *ChatGateway) handleSendMessage(c *Client, data json.RawMessage) {
	var payload struct {
		MachineID string `json:"machineId"`
		UserID    string `json:"userId"`
		Content   string `json:"content"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.MachineID == "" || payload.UserID == "" {
		c.SendError("machineId and userId are required")
		return
	}
	if len(payload.Content) < 1 {
		c.SendError("message content must not be empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	message := model.ChatMessage{
		Content:   payload.Content,
		MachineID: payload.MachineID,
		UserID:    payload.UserID,
	}
	if err := g.store.CreateChatMessage(ctx, &message); err != nil {
		log.Printf("ws sendMessage failed: %v", err)
		c.SendError("failed to send message")
		return
	}

	g.hub.ToRoom(MachineRoom(message.MachineID), NewMessage, &message)
}

func (g *ChatGateway) handleTyping(c *Client, data json.RawMessage) {
	var payload struct {
		MachineID string `json:"machineId"`
		UserID    string `json:"userId"`
		Username  string `json:"username"`
		IsTyping  bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.MachineID == "" {
		c.SendError("machineId is required")
		return
	}

	// Ephemeral relay, never persisted. The sender is excluded.
	g.hub.ToRoomExcept(MachineRoom(payload.MachineID), c, UserTyping, payload)
}

func (g *ChatGateway) logPresence(ctx context.Context, eventType, machineID, userID string) {
	event := model.EventLog{
		Type:      eventType,
		Metadata:  map[string]any{"machineId": machineID},
		MachineID: &machineID,
		UserID:    &userID,
	}
	if err := g.store.AppendEvent(ctx, &event); err != nil {
		log.Printf("failed to log %s for machine %s: %v", eventType, machineID, err)
	}
}
