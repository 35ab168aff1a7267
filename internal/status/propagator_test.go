package status

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"factory-floor-backend/config"
	"factory-floor-backend/internal/db"
	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/store"
)

type recordingBroadcaster struct {
	machines []*model.Machine
}

func (b *recordingBroadcaster) MachineStatusChanged(m *model.Machine) {
	b.machines = append(b.machines, m)
}

type recordingAlerter struct {
	dispatched []string
}

func (a *recordingAlerter) Dispatch(machineID string) {
	a.dispatched = append(a.dispatched, machineID)
}

func newTestService(t *testing.T) (*Service, store.Store, *gorm.DB, *recordingBroadcaster, *recordingAlerter) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	appStore := store.NewGormStore(gormDB)
	broadcaster := &recordingBroadcaster{}
	alerter := &recordingAlerter{}
	svc := NewService(&config.Config{}, appStore, broadcaster, alerter)
	return svc, appStore, gormDB, broadcaster, alerter
}

func seedMachine(t *testing.T, gormDB *gorm.DB) model.Machine {
	t.Helper()

	line := model.ProductionLine{Name: "Line 1", Active: true}
	require.NoError(t, gormDB.Create(&line).Error)
	machine := model.Machine{
		Name:             "Lathe 3",
		Code:             "LA-" + uuid.NewString()[:8],
		Status:           model.StatusNormal,
		ProductionLineID: line.ID,
	}
	require.NoError(t, gormDB.Create(&machine).Error)
	return machine
}

func TestUpdateStatusBroadcastsAndAudits(t *testing.T) {
	svc, _, gormDB, broadcaster, alerter := newTestService(t)
	machine := seedMachine(t, gormDB)
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, machine.ID, model.StatusWarning)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWarning, updated.Status)

	require.Len(t, broadcaster.machines, 1)
	assert.Equal(t, machine.ID, broadcaster.machines[0].ID)
	require.NotNil(t, broadcaster.machines[0].ProductionLine, "broadcast payload carries the joined line")
	assert.Empty(t, alerter.dispatched, "WARNING must not dispatch a failure alert")

	var count int64
	require.NoError(t, gormDB.Model(&model.EventLog{}).Where("type = ?", model.EventMachineStatusChange).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateStatusFailureDispatchesAlert(t *testing.T) {
	svc, _, gormDB, _, alerter := newTestService(t)
	machine := seedMachine(t, gormDB)

	_, err := svc.UpdateStatus(context.Background(), machine.ID, model.StatusFailure)
	require.NoError(t, err)
	assert.Equal(t, []string{machine.ID}, alerter.dispatched)
}

func TestUpdateStatusUnknownMachine(t *testing.T) {
	svc, _, _, broadcaster, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "missing", model.StatusNormal)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, broadcaster.machines, "nothing is broadcast on failure")
}

func TestSimulateOnce(t *testing.T) {
	svc, _, gormDB, broadcaster, _ := newTestService(t)
	seedMachine(t, gormDB)

	svc.SimulateOnce(context.Background())

	// Exactly one simulated change per tick; a no-op transition still
	// produces its audit row.
	var count int64
	require.NoError(t, gormDB.Model(&model.EventLog{}).Where("type = ?", model.EventMachineStatusChange).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, broadcaster.machines, 1)

	var machine model.Machine
	require.NoError(t, gormDB.First(&machine).Error)
	assert.True(t, model.ValidMachineStatus(machine.Status))
}

func TestSimulateOnceEmptyFloor(t *testing.T) {
	svc, _, gormDB, broadcaster, _ := newTestService(t)

	svc.SimulateOnce(context.Background())

	var count int64
	require.NoError(t, gormDB.Model(&model.EventLog{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, broadcaster.machines)
}
