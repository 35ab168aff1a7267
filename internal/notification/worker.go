package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"factory-floor-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans machine-failure alerts out to web-push subscribers. Jobs
// are machine IDs that just transitioned to FAILURE.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new failure-alert worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Alert worker %d started", id)
	for {
		select {
		case machineID := <-wp.jobs:
			wp.sendAlertsForMachine(ctx, machineID)
		case <-ctx.Done():
			log.Printf("Alert worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a failure alert for a machine. Non-blocking from the
// propagator's point of view as long as the buffer has room.
func (wp *WorkerPool) Dispatch(machineID string) {
	wp.jobs <- machineID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// sendAlertsForMachine fetches subscriptions mapped to the machine and sends
// one push per subscriber.
func (wp *WorkerPool) sendAlertsForMachine(ctx context.Context, machineID string) {
	subscriptions, err := wp.store.SubscriptionsForMachine(ctx, machineID)
	if err != nil {
		log.Printf("Error fetching subscriptions for machine %s: %v", machineID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	machineLabel := machineID
	if machine, err := wp.store.GetMachine(ctx, machineID); err != nil {
		log.Printf("Error fetching machine %s: %v", machineID, err)
	} else if machine.Name != "" {
		machineLabel = machine.Name
	}

	log.Printf("Sending %d failure alerts for machine %s", len(subscriptions), machineLabel)

	message := fmt.Sprintf("Machine %s reported a failure", machineLabel)
	for _, sub := range subscriptions {
		wp.sendAlert(ctx, sub.Endpoint, sub.P256DH, sub.Auth, []byte(message))
	}
}

// sendAlert sends a single web push notification and drops expired
// subscriptions.
func (wp *WorkerPool) sendAlert(ctx context.Context, endpoint, p256dh, auth string, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending alert to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", endpoint)
		if err := wp.store.DeleteSubscription(ctx, endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
