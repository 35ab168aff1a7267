package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway handles the inbound events of one namespace.
type Gateway interface {
	Namespace() string
	HandleEvent(c *Client, env Envelope)
	OnDisconnect(c *Client)
}

// Serve returns a gin handler that upgrades the request and runs the
// client's pumps against the given gateway.
func Serve(hub *Hub, gw Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			return
		}

		client := NewClient(conn, gw.Namespace())
		hub.Add(client)

		go client.writePump()
		client.readPump(hub, gw)
	}
}
