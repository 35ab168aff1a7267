package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"factory-floor-backend/internal/db"
	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestStore(t *testing.T) (store.Store, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB), gormDB
}

func seedSubscribedMachine(t *testing.T, gormDB *gorm.DB) model.Machine {
	t.Helper()

	line := model.ProductionLine{Name: "Line 1", Active: true}
	require.NoError(t, gormDB.Create(&line).Error)
	machine := model.Machine{Name: "Conveyor 7", Code: "CV-7", ProductionLineID: line.ID}
	require.NoError(t, gormDB.Create(&machine).Error)

	sub := model.PushSubscription{
		Endpoint: "https://example.com/push",
		P256DH:   "test_p256dh",
		Auth:     "test_auth",
		Machines: []*model.Machine{&machine},
	}
	require.NoError(t, gormDB.Create(&sub).Error)
	return machine
}

func TestWorkerPool_Dispatch(t *testing.T) {
	appStore, _ := newTestStore(t)
	wp := NewWorkerPool(1, appStore, &webpush.Options{})

	wp.Dispatch("M-123")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "M-123", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_SendsFailureAlert(t *testing.T) {
	appStore, gormDB := newTestStore(t)
	machine := seedSubscribedMachine(t, gormDB)
	wp := NewWorkerPool(1, appStore, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "Machine Conveyor 7 reported a failure", string(payload))
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	wp.Start(ctx)
	wp.Dispatch(machine.ID)
	wg.Wait()
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	appStore, gormDB := newTestStore(t)
	machine := seedSubscribedMachine(t, gormDB)
	wp := NewWorkerPool(1, appStore, &webpush.Options{})

	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	wp.sendAlertsForMachine(context.Background(), machine.ID)

	var count int64
	require.NoError(t, gormDB.Model(&model.PushSubscription{}).Count(&count).Error)
	assert.Zero(t, count, "a 410 response must delete the subscription")
}
