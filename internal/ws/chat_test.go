package ws

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"factory-floor-backend/internal/db"
	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/store"
)

func newChatGatewayTest(t *testing.T) (*ChatGateway, *Hub, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	hub := NewHub()
	return NewChatGateway(hub, store.NewGormStore(gormDB)), hub, gormDB
}

func seedChatMachine(t *testing.T, gormDB *gorm.DB, name string) model.Machine {
	t.Helper()

	line := model.ProductionLine{Name: "Line for " + name, Active: true}
	require.NoError(t, gormDB.Create(&line).Error)
	machine := model.Machine{
		Name:             name,
		Code:             "MC-" + uuid.NewString()[:8],
		Status:           model.StatusNormal,
		ProductionLineID: line.ID,
	}
	require.NoError(t, gormDB.Create(&machine).Error)
	return machine
}

func joinChat(t *testing.T, g *ChatGateway, c *Client, machineID, userID string) {
	t.Helper()

	raw, err := json.Marshal(map[string]string{"machineId": machineID, "userId": userID})
	require.NoError(t, err)
	g.HandleEvent(c, Envelope{Event: JoinMachineChat, Data: raw})
}

func TestChatRejoinSwitchesRooms(t *testing.T) {
	gateway, hub, gormDB := newChatGatewayTest(t)
	m1 := seedChatMachine(t, gormDB, "Saw 1")
	m2 := seedChatMachine(t, gormDB, "Saw 2")
	user := model.User{Username: "kit", DisplayName: "Kit", PasswordHash: "x", Role: model.RoleOperator}
	require.NoError(t, gormDB.Create(&user).Error)

	c := newTestClient(NamespaceChat)
	hub.Add(c)

	joinChat(t, gateway, c, m1.ID, user.ID)
	joinChat(t, gateway, c, m2.ID, user.ID)
	received(c) // drain the history replies

	// Joining the second machine must have left the first machine's room.
	hub.ToRoom(MachineRoom(m1.ID), NewMessage, nil)
	assert.Empty(t, received(c), "messages for the abandoned room must not be delivered")
	hub.ToRoom(MachineRoom(m2.ID), NewMessage, nil)
	assert.Len(t, received(c), 1)

	// The first session was closed out in the audit trail.
	var events []model.EventLog
	require.NoError(t, gormDB.Where("type = ?", model.EventUserDisconnected).Find(&events).Error)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].MachineID)
	assert.Equal(t, m1.ID, *events[0].MachineID)

	var connects int64
	require.NoError(t, gormDB.Model(&model.EventLog{}).Where("type = ?", model.EventUserConnected).Count(&connects).Error)
	assert.Equal(t, int64(2), connects)
}

func TestChatDisconnectClosesSession(t *testing.T) {
	gateway, hub, gormDB := newChatGatewayTest(t)
	machine := seedChatMachine(t, gormDB, "Drill 1")
	user := model.User{Username: "mel", DisplayName: "Mel", PasswordHash: "x", Role: model.RoleOperator}
	require.NoError(t, gormDB.Create(&user).Error)

	c := newTestClient(NamespaceChat)
	hub.Add(c)
	joinChat(t, gateway, c, machine.ID, user.ID)

	hub.Remove(c)
	gateway.OnDisconnect(c)

	var events []model.EventLog
	require.NoError(t, gormDB.Where("type = ?", model.EventUserDisconnected).Find(&events).Error)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].MachineID)
	assert.Equal(t, machine.ID, *events[0].MachineID)

	// A second disconnect is a no-op; the session is already gone.
	gateway.OnDisconnect(c)
	var count int64
	require.NoError(t, gormDB.Model(&model.EventLog{}).Where("type = ?", model.EventUserDisconnected).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
