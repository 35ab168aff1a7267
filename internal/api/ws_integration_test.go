package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/ws"
)

const wsReadTimeout = 2 * time.Second

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.Envelope{Event: event, Data: raw}))
}

// waitForEvent reads frames until one matches the wanted event, failing the
// test if it does not arrive in time.
func waitForEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(wsReadTimeout)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		if frame.Event == event {
			return frame.Data
		}
	}
}

func assertNoEvent(t *testing.T, conn *websocket.Conn, event string) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	for {
		var frame wsFrame
		err := conn.ReadJSON(&frame)
		if err != nil {
			return // timed out with nothing unexpected
		}
		if frame.Event == event {
			t.Fatalf("received unexpected %q event", event)
		}
	}
}

// barrier confirms the server finished registering the connection (and any
// prior inbound frames) by provoking an error reply for an unknown event.
func barrier(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	sendWS(t, conn, "sync", nil)
	waitForEvent(t, conn, ws.ErrorEvent)
}

func TestMachineStatusFanOutOverWebSocket(t *testing.T) {
	router, _, gormDB := newTestRouter(t)
	machine := seedMachine(t, gormDB, "Stamper 1")

	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server, "/ws/machines")
	barrier(t, conn)

	w := doJSON(router, http.MethodPatch, "/api/machines/"+machine.ID+"/status", gin.H{"status": "WARNING"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := waitForEvent(t, conn, ws.MachineStatusChanged)
	var pushed model.Machine
	require.NoError(t, json.Unmarshal(data, &pushed))
	assert.Equal(t, machine.ID, pushed.ID)
	assert.Equal(t, model.StatusWarning, pushed.Status)
	require.NotNil(t, pushed.ProductionLine)
}

func TestAnnotationRoomIsolation(t *testing.T) {
	router, _, gormDB := newTestRouter(t)
	m1 := seedMachine(t, gormDB, "Cutter 1")
	m2 := seedMachine(t, gormDB, "Cutter 2")
	user := seedUserWithRole(t, gormDB, "casey", "pw1234", model.RoleOperator)

	server := httptest.NewServer(router)
	defer server.Close()

	watcher1 := dialWS(t, server, "/ws/annotations")
	watcher2 := dialWS(t, server, "/ws/annotations")
	sendWS(t, watcher1, ws.JoinMachine, gin.H{"machineId": m1.ID})
	sendWS(t, watcher2, ws.JoinMachine, gin.H{"machineId": m2.ID})
	barrier(t, watcher1)
	barrier(t, watcher2)

	// A REST create must reach the machine's room over the socket.
	w := doJSON(router, http.MethodPost, "/api/annotations", gin.H{
		"type":      "ARROW",
		"content":   gin.H{"x1": 0, "y1": 0, "x2": 5, "y2": 5},
		"machineId": m1.ID,
		"userId":    user.ID,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	data := waitForEvent(t, watcher1, ws.AnnotationCreated)
	var pushed model.Annotation
	require.NoError(t, json.Unmarshal(data, &pushed))
	assert.Equal(t, m1.ID, pushed.MachineID)
	assert.Equal(t, model.AnnotationArrow, pushed.Type)

	assertNoEvent(t, watcher2, ws.AnnotationCreated)
}

func TestAnnotationMutationsOverWebSocket(t *testing.T) {
	router, _, gormDB := newTestRouter(t)
	machine := seedMachine(t, gormDB, "Welder 3")
	user := seedUserWithRole(t, gormDB, "robin", "pw1234", model.RoleEngineer)

	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWS(t, server, "/ws/annotations")
	sendWS(t, conn, ws.JoinMachine, gin.H{"machineId": machine.ID})
	barrier(t, conn)

	sendWS(t, conn, ws.CreateAnnotation, gin.H{
		"type":      "TEXT",
		"content":   gin.H{"x": 3, "y": 4, "text": "check bearing"},
		"machineId": machine.ID,
		"userId":    user.ID,
	})
	data := waitForEvent(t, conn, ws.AnnotationCreated)
	var created model.Annotation
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, "check bearing", created.Content["text"])

	sendWS(t, conn, ws.UpdateAnnotation, gin.H{
		"id":      created.ID,
		"content": gin.H{"x": 3, "y": 4, "text": "bearing replaced"},
	})
	data = waitForEvent(t, conn, ws.AnnotationUpdated)
	var updated model.Annotation
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "bearing replaced", updated.Content["text"])

	sendWS(t, conn, ws.DeleteAnnotation, gin.H{"id": created.ID})
	data = waitForEvent(t, conn, ws.AnnotationDeleted)
	var deleted model.Annotation
	require.NoError(t, json.Unmarshal(data, &deleted))
	assert.Equal(t, created.ID, deleted.ID)

	var count int64
	require.NoError(t, gormDB.Model(&model.Annotation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestChatOverWebSocket(t *testing.T) {
	router, appStore, gormDB := newTestRouter(t)
	machine := seedMachine(t, gormDB, "Packer 5")
	user := seedUserWithRole(t, gormDB, "jo", "pw1234", model.RoleOperator)

	earlier := model.ChatMessage{Content: "handover: filter changed", MachineID: machine.ID, UserID: user.ID}
	require.NoError(t, gormDB.Create(&earlier).Error)

	server := httptest.NewServer(router)
	defer server.Close()

	speaker := dialWS(t, server, "/ws/chat")
	listener := dialWS(t, server, "/ws/chat")
	sendWS(t, speaker, ws.JoinMachineChat, gin.H{"machineId": machine.ID, "userId": user.ID})
	sendWS(t, listener, ws.JoinMachineChat, gin.H{"machineId": machine.ID, "userId": user.ID})

	// Joining replays recent history.
	data := waitForEvent(t, speaker, ws.ChatHistory)
	var history []model.ChatMessage
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "handover: filter changed", history[0].Content)
	waitForEvent(t, listener, ws.ChatHistory)

	sendWS(t, speaker, ws.SendMessage, gin.H{
		"machineId": machine.ID,
		"userId":    user.ID,
		"content":   "restarting the packer",
	})

	for _, conn := range []*websocket.Conn{speaker, listener} {
		data := waitForEvent(t, conn, ws.NewMessage)
		var msg model.ChatMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "restarting the packer", msg.Content)
		assert.Equal(t, machine.ID, msg.MachineID)
	}

	messages, err := appStore.ListChatByMachine(context.Background(), machine.ID, 10)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	t.Run("empty message is rejected", func(t *testing.T) {
		sendWS(t, speaker, ws.SendMessage, gin.H{"machineId": machine.ID, "userId": user.ID, "content": ""})
		data := waitForEvent(t, speaker, ws.ErrorEvent)
		assert.Contains(t, string(data), "must not be empty")
	})

	t.Run("typing relays to peers only", func(t *testing.T) {
		sendWS(t, speaker, ws.UserTyping, gin.H{
			"machineId": machine.ID, "userId": user.ID, "username": "jo", "isTyping": true,
		})
		data := waitForEvent(t, listener, ws.UserTyping)
		assert.Contains(t, string(data), `"isTyping":true`)
		assertNoEvent(t, speaker, ws.UserTyping)
	})
}
