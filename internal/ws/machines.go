package ws

import (
	"factory-floor-backend/internal/model"
)

// MachineGateway is the outbound-only /ws/machines namespace. Every status
// change is fanned out to every connected client; there is no per-machine
// subscription filtering on this namespace.
type MachineGateway struct {
	hub *Hub
}

// NewMachineGateway creates the machine-status gateway.
func NewMachineGateway(hub *Hub) *MachineGateway {
	return &MachineGateway{hub: hub}
}

func (g *MachineGateway) Namespace() string {
	return NamespaceMachines
}

// HandleEvent ignores inbound traffic; the namespace only pushes.
func (g *MachineGateway) HandleEvent(c *Client, env Envelope) {
	c.SendError("unsupported event: " + env.Event)
}

func (g *MachineGateway) OnDisconnect(c *Client) {}

// MachineStatusChanged broadcasts the full updated machine, joined with its
// production line, to all connected clients.
func (g *MachineGateway) MachineStatusChanged(m *model.Machine) {
	g.hub.ToNamespace(NamespaceMachines, MachineStatusChanged, m)
}
